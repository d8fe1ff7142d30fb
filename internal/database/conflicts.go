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

// UpsertConflict writes or replaces the tracked-conflict row for the
// entry's star system. One row per system, latest generation wins.
func (db *DB) UpsertConflict(ctx context.Context, entry *models.ConflictEntry) error {
	start := time.Now()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO conflict_state (
			star_system, war_type, faction1, faction2, stake1, stake2,
			won_days1, won_days2, last_tick_id, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (star_system) DO UPDATE SET
			war_type = EXCLUDED.war_type,
			faction1 = EXCLUDED.faction1,
			faction2 = EXCLUDED.faction2,
			stake1 = EXCLUDED.stake1,
			stake2 = EXCLUDED.stake2,
			won_days1 = EXCLUDED.won_days1,
			won_days2 = EXCLUDED.won_days2,
			last_tick_id = EXCLUDED.last_tick_id,
			updated_at = EXCLUDED.updated_at`,
		entry.StarSystem, string(entry.WarType), entry.Faction1, entry.Faction2,
		entry.Stake1, entry.Stake2, entry.WonDays1, entry.WonDays2,
		entry.LastTickID, entry.UpdatedAt)
	metrics.RecordDBQuery("upsert", "conflict_state", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert conflict state for %s: %w", entry.StarSystem, err)
	}
	return nil
}

// DeleteConflict removes the tracked-conflict row for a star system.
// Deleting an absent row is not an error.
func (db *DB) DeleteConflict(ctx context.Context, starSystem string) error {
	start := time.Now()

	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM conflict_state WHERE star_system = ?", starSystem)
	metrics.RecordDBQuery("delete", "conflict_state", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("delete conflict state for %s: %w", starSystem, err)
	}
	return nil
}

// ActiveConflicts returns all tracked-conflict rows keyed by star system.
func (db *DB) ActiveConflicts(ctx context.Context) (map[string]*models.ConflictEntry, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT star_system, war_type, faction1, faction2, stake1, stake2,
		       won_days1, won_days2, last_tick_id, updated_at
		FROM conflict_state`)
	metrics.RecordDBQuery("select", "conflict_state", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query conflict state: %w", err)
	}
	defer closeQuietly(rows)

	entries := make(map[string]*models.ConflictEntry)
	for rows.Next() {
		var (
			entry   models.ConflictEntry
			warType string
		)
		if err := rows.Scan(&entry.StarSystem, &warType, &entry.Faction1,
			&entry.Faction2, &entry.Stake1, &entry.Stake2, &entry.WonDays1,
			&entry.WonDays2, &entry.LastTickID, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conflict state: %w", err)
		}
		entry.WarType = models.WarType(warType)
		entries[entry.StarSystem] = &entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conflict state: %w", err)
	}

	return entries, nil
}
