// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package conflict

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/tickwatch/internal/logging"
	"github.com/tomtom215/tickwatch/internal/models"
)

// Snapshot is the extracted "current" view of tracked conflicts for one
// scan window: at most one entry per star system, plus the set of all
// systems any candidate event touched (needed for visited-only cleanup).
type Snapshot struct {
	Entries map[string]*models.ConflictEntry
	Visited map[string]struct{}
}

// Extract scans candidate events and produces the current tracked
// conflict per system. Only the two system-state event kinds are
// considered; a conflict qualifies when either side is a tracked
// faction; when a system has several qualifying events the latest event
// timestamp wins (last-write-wins per system, not per conflict). Pure.
func Extract(candidates []models.CandidateEvent, tracked []string) *Snapshot {
	trackedSet := make(map[string]struct{}, len(tracked))
	for _, name := range tracked {
		trackedSet[name] = struct{}{}
	}

	snap := &Snapshot{
		Entries: make(map[string]*models.ConflictEntry),
		Visited: make(map[string]struct{}),
	}
	latest := make(map[string]models.CandidateEvent)

	for _, cand := range candidates {
		if !models.IsSystemStateEvent(cand.EventKind) || cand.StarSystem == "" {
			continue
		}
		snap.Visited[cand.StarSystem] = struct{}{}

		if pickConflict(cand.Conflicts, trackedSet) == nil {
			continue
		}
		if prev, ok := latest[cand.StarSystem]; ok && !cand.Timestamp.After(prev.Timestamp) {
			continue
		}
		latest[cand.StarSystem] = cand
	}

	for system, cand := range latest {
		c := pickConflict(cand.Conflicts, trackedSet)
		snap.Entries[system] = entryFromSnapshot(system, c)
	}
	return snap
}

// pickConflict returns the first conflict involving a tracked faction,
// nil when none qualifies.
func pickConflict(conflicts []models.ConflictSnapshot, tracked map[string]struct{}) *models.ConflictSnapshot {
	for i := range conflicts {
		c := &conflicts[i]
		if isTracked(c.Faction1.Name, tracked) || isTracked(c.Faction2.Name, tracked) {
			return c
		}
	}
	return nil
}

func isTracked(name *string, tracked map[string]struct{}) bool {
	if name == nil {
		return false
	}
	_, ok := tracked[*name]
	return ok
}

// entryFromSnapshot converts a wire conflict into a candidate entry.
// Missing values become zero values; the diff layer fills tick and
// update stamps.
func entryFromSnapshot(system string, c *models.ConflictSnapshot) *models.ConflictEntry {
	entry := &models.ConflictEntry{
		StarSystem: system,
		WarType:    models.WarTypeUnknown,
	}
	if c.WarType != nil {
		entry.WarType = models.ParseWarType(*c.WarType)
	}
	if c.Faction1.Name != nil {
		entry.Faction1 = *c.Faction1.Name
	}
	if c.Faction2.Name != nil {
		entry.Faction2 = *c.Faction2.Name
	}
	if c.Faction1.Stake != nil {
		entry.Stake1 = *c.Faction1.Stake
	}
	if c.Faction2.Stake != nil {
		entry.Stake2 = *c.Faction2.Stake
	}
	if c.Faction1.WonDays != nil {
		entry.WonDays1 = *c.Faction1.WonDays
	}
	if c.Faction2.WonDays != nil {
		entry.WonDays2 = *c.Faction2.WonDays
	}
	return entry
}

// journalMessage is the slice of the stored JSON blob extraction needs.
type journalMessage struct {
	Message struct {
		Conflicts []models.ConflictSnapshot `json:"Conflicts"`
	} `json:"message"`
}

// CandidatesFromJournal parses journal rows back into candidate events.
// Rows whose JSON blob no longer parses are skipped with a debug log;
// the journal is append-only audit data, one bad row is not fatal.
func CandidatesFromJournal(rows []models.JournalEvent) []models.CandidateEvent {
	candidates := make([]models.CandidateEvent, 0, len(rows))
	for i := range rows {
		row := &rows[i]

		var msg journalMessage
		if err := json.Unmarshal([]byte(row.JSON), &msg); err != nil {
			logging.Debug().Err(err).Str("id", row.ID).Msg("skipping unparseable journal row")
			continue
		}

		cand := models.CandidateEvent{
			EventKind:  row.EventKind,
			StarSystem: row.StarSystem,
			Conflicts:  msg.Message.Conflicts,
		}
		if row.EventTimestamp != nil {
			cand.Timestamp = *row.EventTimestamp
		}
		candidates = append(candidates, cand)
	}
	return candidates
}
