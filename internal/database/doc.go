// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package database provides the DuckDB persistence layer: the raw event
// journal, per-system derived state tables, and the tracked-conflict
// state. Feed writes arrive as ordered Statement batches executed in a
// single transaction; the conflict engine reads the journal per tick and
// maintains conflict_state through upserts keyed by star system.
package database
