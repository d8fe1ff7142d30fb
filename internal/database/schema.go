// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context bounding schema DDL execution.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements.
func tableCreationQueries() []string {
	return []string{
		// Raw event audit journal. Rows are stamped with the tick id
		// current at arrival and purged by the retention sweep.
		`CREATE TABLE IF NOT EXISTS journal_events (
			id UUID PRIMARY KEY,
			schema_ref TEXT NOT NULL,
			gateway_timestamp TIMESTAMP,
			event_kind TEXT NOT NULL,
			star_system TEXT NOT NULL,
			tick_id TEXT NOT NULL,
			event_timestamp TIMESTAMP,
			json TEXT NOT NULL,
			received_at TIMESTAMP NOT NULL
		)`,

		// Per-system derived state. One generation of rows per system;
		// a new message for the system replaces all of them atomically
		// (delete-then-insert inside one transaction).
		`CREATE TABLE IF NOT EXISTS system_info (
			star_system TEXT PRIMARY KEY,
			message_id UUID NOT NULL,
			controlling_faction TEXT,
			controlling_power TEXT,
			population BIGINT,
			security TEXT,
			government TEXT,
			allegiance TEXT,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS system_factions (
			star_system TEXT NOT NULL,
			message_id UUID NOT NULL,
			name TEXT NOT NULL,
			influence DOUBLE,
			state TEXT,
			allegiance TEXT,
			government TEXT,
			happiness TEXT,
			active_states TEXT,
			pending_states TEXT,
			recovering_states TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS system_conflicts (
			star_system TEXT NOT NULL,
			message_id UUID NOT NULL,
			war_type TEXT,
			status TEXT,
			faction1 TEXT,
			faction2 TEXT,
			stake1 TEXT,
			stake2 TEXT,
			won_days1 INTEGER,
			won_days2 INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS system_powerplay (
			star_system TEXT PRIMARY KEY,
			message_id UUID NOT NULL,
			powers TEXT,
			powerplay_state TEXT,
			control_progress DOUBLE,
			reinforcement BIGINT,
			undermining BIGINT
		)`,

		// Conflict state store: exactly one row per system with an
		// active, unresolved tracked conflict. Written only by the
		// conflict diff engine.
		`CREATE TABLE IF NOT EXISTS conflict_state (
			star_system TEXT PRIMARY KEY,
			war_type TEXT NOT NULL,
			faction1 TEXT NOT NULL,
			faction2 TEXT NOT NULL,
			stake1 TEXT,
			stake2 TEXT,
			won_days1 INTEGER NOT NULL,
			won_days2 INTEGER NOT NULL,
			last_tick_id TEXT,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates secondary indexes.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_journal_tick ON journal_events (tick_id)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_received ON journal_events (received_at)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_system ON journal_events (star_system)`,
		`CREATE INDEX IF NOT EXISTS idx_factions_system ON system_factions (star_system)`,
		`CREATE INDEX IF NOT EXISTS idx_conflicts_system ON system_conflicts (star_system)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
