// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package services adapts component lifecycles to suture.Service: the
// Run(ctx)-style loops of the ingester and tick watcher, the tick-bus
// subscriber driving the conflict engine, and the HTTP server's
// ListenAndServe/Shutdown pair.
package services
