// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package feed

import (
	"bytes"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"
)

// compress deflates a JSON payload the way the feed relay does.
func compress(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(payload)); err != nil {
		t.Fatalf("compress payload: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
	return buf.Bytes()
}

const jumpMessage = `{
	"$schemaRef": "https://schemas.example/journal/1",
	"header": {"gatewayTimestamp": "2026-08-01T12:00:05Z", "softwareName": "TestClient"},
	"message": {
		"event": "FSDJump",
		"timestamp": "2026-08-01T12:00:00Z",
		"StarSystem": "Lave",
		"Population": 25000,
		"SystemSecurity": "$SYSTEM_SECURITY_medium;",
		"SystemFaction": {"Name": "Lave Dictatorship"},
		"Factions": [
			{"Name": "Lave Dictatorship", "Influence": 0.52},
			{"Name": "Lave Crew", "Influence": 0.18, "FactionState": "War"}
		],
		"Conflicts": [{
			"WarType": "war",
			"Status": "active",
			"Faction1": {"Name": "Lave Crew", "Stake": "Lave Station", "WonDays": 1},
			"Faction2": {"Name": "Lave Navy", "Stake": "Castellan Hub", "WonDays": 0}
		}]
	}
}`

func TestDecode(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 10, 0, time.UTC)

	t.Run("jump message yields ordered statements", func(t *testing.T) {
		decoded, err := Decode(compress(t, jumpMessage), "tick-1", now)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decoded == nil {
			t.Fatal("Decode returned nil for a handled event")
		}

		// 1 journal + 4 deletes + 1 system info + 2 factions + 1 conflict.
		if len(decoded.Statements) != 9 {
			t.Fatalf("got %d statements, want 9", len(decoded.Statements))
		}

		wantOps := []struct{ op, table string }{
			{"insert", "journal_events"},
			{"delete", "system_info"},
			{"delete", "system_factions"},
			{"delete", "system_conflicts"},
			{"delete", "system_powerplay"},
			{"insert", "system_info"},
			{"insert", "system_factions"},
			{"insert", "system_factions"},
			{"insert", "system_conflicts"},
		}
		for i, want := range wantOps {
			got := decoded.Statements[i]
			if got.Op != want.op || got.Table != want.table {
				t.Errorf("statement %d = %s %s, want %s %s",
					i, got.Op, got.Table, want.op, want.table)
			}
		}

		if decoded.Candidate.StarSystem != "Lave" {
			t.Errorf("candidate system = %q, want Lave", decoded.Candidate.StarSystem)
		}
		if len(decoded.Candidate.Conflicts) != 1 {
			t.Errorf("candidate conflicts = %d, want 1", len(decoded.Candidate.Conflicts))
		}
		wantTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		if !decoded.Candidate.Timestamp.Equal(wantTime) {
			t.Errorf("candidate timestamp = %v, want %v", decoded.Candidate.Timestamp, wantTime)
		}
	})

	t.Run("powerplay fields add one trailing insert", func(t *testing.T) {
		msg := `{
			"$schemaRef": "https://schemas.example/journal/1",
			"header": {},
			"message": {
				"event": "Location",
				"timestamp": "2026-08-01T12:00:00Z",
				"StarSystem": "Sol",
				"Powers": ["Power A"],
				"PowerplayState": "Stronghold"
			}
		}`
		decoded, err := Decode(compress(t, msg), "tick-1", now)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		last := decoded.Statements[len(decoded.Statements)-1]
		if last.Op != "insert" || last.Table != "system_powerplay" {
			t.Errorf("last statement = %s %s, want insert system_powerplay", last.Op, last.Table)
		}
	})

	t.Run("unhandled event kind is skipped", func(t *testing.T) {
		msg := `{"$schemaRef": "x", "header": {}, "message": {"event": "Docked", "StarSystem": "Sol"}}`
		decoded, err := Decode(compress(t, msg), "tick-1", now)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decoded != nil {
			t.Errorf("Decode returned statements for unhandled event kind")
		}
	})

	t.Run("missing system name is skipped", func(t *testing.T) {
		msg := `{"$schemaRef": "x", "header": {}, "message": {"event": "FSDJump"}}`
		decoded, err := Decode(compress(t, msg), "tick-1", now)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decoded != nil {
			t.Errorf("Decode returned statements for a message without a system")
		}
	})

	t.Run("garbage input errors", func(t *testing.T) {
		if _, err := Decode([]byte("not zlib at all"), "tick-1", now); err == nil {
			t.Error("Decode(garbage) succeeded, want decompress error")
		}
	})

	t.Run("compressed non-JSON errors", func(t *testing.T) {
		if _, err := Decode(compress(t, "not json"), "tick-1", now); err == nil {
			t.Error("Decode(non-JSON) succeeded, want parse error")
		}
	})

	t.Run("journal row carries tick and timestamps", func(t *testing.T) {
		decoded, err := Decode(compress(t, jumpMessage), "tick-7", now)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		journal := decoded.Statements[0]
		// Args: id, schema_ref, gateway_ts, event_kind, star_system,
		// tick_id, event_ts, json, received_at.
		if journal.Args[3] != "FSDJump" {
			t.Errorf("event kind arg = %v, want FSDJump", journal.Args[3])
		}
		if journal.Args[5] != "tick-7" {
			t.Errorf("tick id arg = %v, want tick-7", journal.Args[5])
		}
		if journal.Args[2] == nil {
			t.Error("gateway timestamp arg is nil, want parsed value")
		}
	})
}
