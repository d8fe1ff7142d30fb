// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package conflict tracks faction conflicts involving the configured
// tracked factions. A pure extraction step reduces candidate events to
// one current conflict per star system; the engine diffs that snapshot
// against persisted state and drives the lifecycle from absent through
// active and day-scored to resolved, announcing each transition.
//
// Two entry points share the extraction and diff logic: ProcessTick
// replays the tick's journal (full scan, absent entries removed) and
// ProcessEvents handles freshly observed events (immediate detection,
// only revisited systems are eligible for removal).
package conflict
