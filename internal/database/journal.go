// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/tickwatch/internal/metrics"
	"github.com/tomtom215/tickwatch/internal/models"
)

// PurgeJournal deletes journal rows received before the cutoff and
// returns the number of rows removed. Derived per-system state is never
// purged; only the raw audit journal is windowed.
func (db *DB) PurgeJournal(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()

	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM journal_events WHERE received_at < ?", cutoff)
	metrics.RecordDBQuery("delete", "journal_events", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("purge journal events: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge journal rows affected: %w", err)
	}

	metrics.RecordJournalPurge(rows)
	return rows, nil
}

// JournalEventsForTick returns the system-state journal rows stamped with
// the given tick, ordered by event timestamp so later rows win
// last-write-wins extraction on iteration order alone.
func (db *DB) JournalEventsForTick(ctx context.Context, tickID string) ([]models.JournalEvent, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, schema_ref, gateway_timestamp, event_kind, star_system,
		       tick_id, event_timestamp, json, received_at
		FROM journal_events
		WHERE tick_id = ? AND event_kind IN (?, ?)
		ORDER BY event_timestamp ASC`,
		tickID, models.EventJump, models.EventLocation)
	metrics.RecordDBQuery("select", "journal_events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query journal events for tick: %w", err)
	}
	defer closeQuietly(rows)

	var events []models.JournalEvent
	for rows.Next() {
		var (
			ev        models.JournalEvent
			gwTS      sql.NullTime
			evTS      sql.NullTime
			schemaRef sql.NullString
		)
		if err := rows.Scan(&ev.ID, &schemaRef, &gwTS, &ev.EventKind,
			&ev.StarSystem, &ev.TickID, &evTS, &ev.JSON, &ev.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan journal event: %w", err)
		}
		ev.SchemaRef = schemaRef.String
		if gwTS.Valid {
			ts := gwTS.Time
			ev.GatewayTimestamp = &ts
		}
		if evTS.Valid {
			ts := evTS.Time
			ev.EventTimestamp = &ts
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal events: %w", err)
	}

	return events, nil
}

// JournalCount returns the total number of journal rows. Used by the ops
// surface and tests.
func (db *DB) JournalCount(ctx context.Context) (int64, error) {
	start := time.Now()

	var count int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM journal_events").Scan(&count)
	metrics.RecordDBQuery("select", "journal_events", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count journal events: %w", err)
	}
	return count, nil
}
