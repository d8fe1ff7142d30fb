// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tickwatch/internal/metrics"
	"github.com/tomtom215/tickwatch/internal/models"
)

// Statement is one deferred persistence operation produced by the feed
// decoder. Statements are accumulated by the ingestion client and executed
// in order inside a single transaction, which is what makes the
// delete-then-insert replace of a system's derived rows atomic for
// readers.
type Statement struct {
	// Op is "insert" or "delete"; used for metrics and tests.
	Op string

	// Table is the target table name.
	Table string

	SQL  string
	Args []any
}

// ExecBatch executes all statements in order inside one transaction.
// Either the whole batch commits or none of it does.
func (db *DB) ExecBatch(ctx context.Context, stmts []Statement) error {
	if len(stmts) == 0 {
		return nil
	}

	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordBatchCommit(time.Since(start), err)
		return fmt.Errorf("begin batch transaction: %w", err)
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			_ = tx.Rollback()
			metrics.RecordDBQuery(stmt.Op, stmt.Table, time.Since(start), err)
			metrics.RecordBatchCommit(time.Since(start), err)
			return fmt.Errorf("%s %s: %w", stmt.Op, stmt.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordBatchCommit(time.Since(start), err)
		return fmt.Errorf("commit batch transaction: %w", err)
	}

	metrics.RecordBatchCommit(time.Since(start), nil)
	return nil
}

// JournalInsert builds the audit journal insert for one decoded message.
func JournalInsert(ev *models.JournalEvent) Statement {
	return Statement{
		Op:    "insert",
		Table: "journal_events",
		SQL: `INSERT INTO journal_events (
			id, schema_ref, gateway_timestamp, event_kind, star_system,
			tick_id, event_timestamp, json, received_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		Args: []any{
			ev.ID, ev.SchemaRef, nullTime(ev.GatewayTimestamp), ev.EventKind,
			ev.StarSystem, ev.TickID, nullTime(ev.EventTimestamp), ev.JSON,
			ev.ReceivedAt,
		},
	}
}

// derivedTables lists the per-system derived tables in deletion order.
var derivedTables = []string{
	"system_info",
	"system_factions",
	"system_conflicts",
	"system_powerplay",
}

// SystemRowsDelete builds the four deletes that clear a system's previous
// derived-state generation. Deletes must precede the same system's inserts
// within a batch.
func SystemRowsDelete(starSystem string) []Statement {
	stmts := make([]Statement, 0, len(derivedTables))
	for _, table := range derivedTables {
		stmts = append(stmts, Statement{
			Op:    "delete",
			Table: table,
			SQL:   fmt.Sprintf("DELETE FROM %s WHERE star_system = ?", table),
			Args:  []any{starSystem},
		})
	}
	return stmts
}

// SystemInfoInsert builds the system-info insert for one event.
func SystemInfoInsert(messageID string, ev *models.GalaxyEvent, receivedAt time.Time) Statement {
	var controllingFaction *string
	if ev.SystemFaction != nil {
		controllingFaction = ev.SystemFaction.Name
	}

	return Statement{
		Op:    "insert",
		Table: "system_info",
		SQL: `INSERT INTO system_info (
			star_system, message_id, controlling_faction, controlling_power,
			population, security, government, allegiance, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		Args: []any{
			ev.StarSystem, messageID, nullStr(controllingFaction),
			nullStr(ev.ControllingPower), nullInt64(ev.Population),
			nullStr(ev.SystemSecurity), nullStr(ev.SystemGovernment),
			nullStr(ev.SystemAllegiance), receivedAt,
		},
	}
}

// FactionInsert builds one faction-row insert. A faction without a name is
// recorded under the sentinel "Unknown" rather than dropped.
func FactionInsert(starSystem, messageID string, f *models.FactionSnapshot) Statement {
	name := "Unknown"
	if f.Name != nil && *f.Name != "" {
		name = *f.Name
	}

	return Statement{
		Op:    "insert",
		Table: "system_factions",
		SQL: `INSERT INTO system_factions (
			star_system, message_id, name, influence, state, allegiance,
			government, happiness, active_states, pending_states, recovering_states
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		Args: []any{
			starSystem, messageID, name, nullFloat64(f.Influence),
			nullStr(f.FactionState), nullStr(f.Allegiance), nullStr(f.Government),
			nullStr(f.Happiness), nullRaw(f.ActiveStates), nullRaw(f.PendingStates),
			nullRaw(f.RecoveringStates),
		},
	}
}

// ConflictRowInsert builds one conflict-row insert with fields copied
// verbatim; missing values become NULL.
func ConflictRowInsert(starSystem, messageID string, c *models.ConflictSnapshot) Statement {
	return Statement{
		Op:    "insert",
		Table: "system_conflicts",
		SQL: `INSERT INTO system_conflicts (
			star_system, message_id, war_type, status, faction1, faction2,
			stake1, stake2, won_days1, won_days2
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		Args: []any{
			starSystem, messageID, nullStr(c.WarType), nullStr(c.Status),
			nullStr(c.Faction1.Name), nullStr(c.Faction2.Name),
			nullStr(c.Faction1.Stake), nullStr(c.Faction2.Stake),
			nullInt(c.Faction1.WonDays), nullInt(c.Faction2.WonDays),
		},
	}
}

// PowerplayInsert builds the powerplay-row insert. Callers emit it only
// when the event actually carries powerplay fields.
func PowerplayInsert(messageID string, ev *models.GalaxyEvent) Statement {
	var powers any
	if len(ev.Powers) > 0 {
		powers = joinPowers(ev.Powers)
	}

	return Statement{
		Op:    "insert",
		Table: "system_powerplay",
		SQL: `INSERT INTO system_powerplay (
			star_system, message_id, powers, powerplay_state,
			control_progress, reinforcement, undermining
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		Args: []any{
			ev.StarSystem, messageID, powers, nullStr(ev.PowerplayState),
			nullFloat64(ev.PowerplayStateControlProgress),
			nullInt64(ev.PowerplayStateReinforcement),
			nullInt64(ev.PowerplayStateUndermining),
		},
	}
}
