// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package conflict

import (
	"fmt"

	"github.com/tomtom215/tickwatch/internal/models"
)

// warTypeLabel renders a war type for humans.
func warTypeLabel(wt models.WarType) string {
	switch wt {
	case models.WarTypeWar:
		return "war"
	case models.WarTypeCivilWar:
		return "civil war"
	case models.WarTypeElection:
		return "election"
	default:
		return "conflict"
	}
}

// trackedFaction returns the tracked side's name, preferring side one
// when both are tracked. Empty when neither side is tracked (cannot
// happen for extracted entries).
func (e *Engine) trackedFaction(entry *models.ConflictEntry) string {
	for _, name := range e.tracked {
		if entry.Faction1 == name {
			return entry.Faction1
		}
	}
	for _, name := range e.tracked {
		if entry.Faction2 == name {
			return entry.Faction2
		}
	}
	return ""
}

func (e *Engine) newConflictText(entry *models.ConflictEntry) string {
	text := fmt.Sprintf("New %s in %s: %s vs %s (%d - %d).",
		warTypeLabel(entry.WarType), entry.StarSystem,
		entry.Faction1, entry.Faction2, entry.WonDays1, entry.WonDays2)
	if entry.Stake1 != "" || entry.Stake2 != "" {
		text += fmt.Sprintf(" At stake: %s / %s.",
			orNone(entry.Stake1), orNone(entry.Stake2))
	}
	return text
}

func (e *Engine) dayScoredText(entry, prior *models.ConflictEntry) string {
	scorer := entry.Faction1
	if entry.WonDays2 > prior.WonDays2 {
		scorer = entry.Faction2
	}
	return fmt.Sprintf("%s scored a day in the %s in %s. %s vs %s now %d - %d.",
		scorer, warTypeLabel(entry.WarType), entry.StarSystem,
		entry.Faction1, entry.Faction2, entry.WonDays1, entry.WonDays2)
}

func (e *Engine) resolvedText(entry *models.ConflictEntry) string {
	winner, stake := entry.Winner()
	tracked := e.trackedFaction(entry)

	outcome := "concluded"
	if tracked != "" {
		if winner == tracked {
			outcome = fmt.Sprintf("won by %s", tracked)
		} else {
			outcome = fmt.Sprintf("lost by %s", tracked)
		}
	}

	text := fmt.Sprintf("The %s in %s is over, %s (%d - %d).",
		warTypeLabel(entry.WarType), entry.StarSystem, outcome,
		entry.WonDays1, entry.WonDays2)
	if stake != "" {
		text += fmt.Sprintf(" %s takes %s.", winner, stake)
	}
	return text
}

func (e *Engine) removedText(prior *models.ConflictEntry, tickID string) string {
	return fmt.Sprintf("Dropped conflict tracking for %s (%s vs %s): no longer reported as of tick %s.",
		prior.StarSystem, prior.Faction1, prior.Faction2, tickID)
}

func orNone(stake string) string {
	if stake == "" {
		return "nothing"
	}
	return stake
}
