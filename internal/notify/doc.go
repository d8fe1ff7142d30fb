// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package notify delivers conflict-transition announcements to webhook
// endpoints. Delivery is strictly best-effort: a dead or slow endpoint
// is a logged metric, never an error the caller sees.
package notify
