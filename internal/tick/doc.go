// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package tick detects and distributes game ticks. The Watcher polls the
// external tick endpoint; the Bus fans newly observed tick ids out to
// subscribers and holds the current id for journal stamping.
package tick
