// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package metrics defines the Prometheus metrics exposed on /metrics.
//
// All metrics are registered at package load via promauto. The Record*
// helpers keep call sites terse and centralize label conventions.
package metrics
