// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package conflict

import (
	"testing"
	"time"

	"github.com/tomtom215/tickwatch/internal/models"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// conflictBetween builds a wire conflict snapshot.
func conflictBetween(f1, f2 string, won1, won2 int) models.ConflictSnapshot {
	return models.ConflictSnapshot{
		WarType: strPtr("war"),
		Status:  strPtr("active"),
		Faction1: models.ConflictFaction{
			Name: strPtr(f1), Stake: strPtr(f1 + " Base"), WonDays: intPtr(won1),
		},
		Faction2: models.ConflictFaction{
			Name: strPtr(f2), Stake: strPtr(f2 + " Base"), WonDays: intPtr(won2),
		},
	}
}

func candidate(system string, ts time.Time, conflicts ...models.ConflictSnapshot) models.CandidateEvent {
	return models.CandidateEvent{
		EventKind:  models.EventJump,
		StarSystem: system,
		Timestamp:  ts,
		Conflicts:  conflicts,
	}
}

func TestExtract(t *testing.T) {
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	tracked := []string{"Alpha"}

	t.Run("latest event wins per system", func(t *testing.T) {
		snap := Extract([]models.CandidateEvent{
			candidate("Sol", t2, conflictBetween("Alpha", "Beta", 2, 1)),
			candidate("Sol", t1, conflictBetween("Alpha", "Beta", 1, 1)),
		}, tracked)

		entry, ok := snap.Entries["Sol"]
		if !ok {
			t.Fatal("no entry extracted for Sol")
		}
		if entry.WonDays1 != 2 {
			t.Errorf("WonDays1 = %d, want 2 (the later event's score)", entry.WonDays1)
		}
	})

	t.Run("untracked conflicts are dropped", func(t *testing.T) {
		snap := Extract([]models.CandidateEvent{
			candidate("Diso", t1, conflictBetween("Gamma", "Delta", 1, 0)),
		}, tracked)

		if len(snap.Entries) != 0 {
			t.Errorf("extracted %d entries, want 0", len(snap.Entries))
		}
		if _, visited := snap.Visited["Diso"]; !visited {
			t.Error("Diso not marked visited")
		}
	})

	t.Run("tracked on either side qualifies", func(t *testing.T) {
		snap := Extract([]models.CandidateEvent{
			candidate("Lave", t1, conflictBetween("Beta", "Alpha", 0, 3)),
		}, tracked)

		entry, ok := snap.Entries["Lave"]
		if !ok {
			t.Fatal("no entry extracted for Lave")
		}
		if entry.Faction2 != "Alpha" || entry.WonDays2 != 3 {
			t.Errorf("entry = %+v, want Alpha on side two with 3 won days", entry)
		}
	})

	t.Run("non-system events are ignored", func(t *testing.T) {
		snap := Extract([]models.CandidateEvent{
			{
				EventKind:  "Docked",
				StarSystem: "Sol",
				Timestamp:  t1,
				Conflicts:  []models.ConflictSnapshot{conflictBetween("Alpha", "Beta", 1, 0)},
			},
		}, tracked)

		if len(snap.Entries) != 0 || len(snap.Visited) != 0 {
			t.Errorf("snapshot = %+v, want empty", snap)
		}
	})

	t.Run("visited includes conflict-free systems", func(t *testing.T) {
		snap := Extract([]models.CandidateEvent{
			candidate("Sol", t1),
		}, tracked)

		if len(snap.Entries) != 0 {
			t.Errorf("entries = %d, want 0", len(snap.Entries))
		}
		if _, ok := snap.Visited["Sol"]; !ok {
			t.Error("Sol not marked visited")
		}
	})

	t.Run("missing optional fields default", func(t *testing.T) {
		snap := Extract([]models.CandidateEvent{
			candidate("Sol", t1, models.ConflictSnapshot{
				Faction1: models.ConflictFaction{Name: strPtr("Alpha")},
				Faction2: models.ConflictFaction{},
			}),
		}, tracked)

		entry, ok := snap.Entries["Sol"]
		if !ok {
			t.Fatal("no entry extracted")
		}
		if entry.WarType != models.WarTypeUnknown {
			t.Errorf("war type = %q, want unknown", entry.WarType)
		}
		if entry.Faction2 != "" || entry.WonDays1 != 0 {
			t.Errorf("entry = %+v, want zero defaults", entry)
		}
	})
}

func TestCandidatesFromJournal(t *testing.T) {
	ts := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	rows := []models.JournalEvent{
		{
			ID:             "a",
			EventKind:      models.EventJump,
			StarSystem:     "Sol",
			EventTimestamp: &ts,
			JSON: `{"message": {"Conflicts": [{
				"WarType": "war",
				"Faction1": {"Name": "Alpha", "WonDays": 1},
				"Faction2": {"Name": "Beta", "WonDays": 0}
			}]}}`,
		},
		{
			ID:         "b",
			EventKind:  models.EventJump,
			StarSystem: "Diso",
			JSON:       `{{{not json`,
		},
	}

	candidates := CandidatesFromJournal(rows)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 (bad row skipped)", len(candidates))
	}
	c := candidates[0]
	if c.StarSystem != "Sol" || !c.Timestamp.Equal(ts) {
		t.Errorf("candidate = %+v", c)
	}
	if len(c.Conflicts) != 1 || *c.Conflicts[0].Faction1.Name != "Alpha" {
		t.Errorf("conflicts = %+v, want Alpha vs Beta", c.Conflicts)
	}
}
