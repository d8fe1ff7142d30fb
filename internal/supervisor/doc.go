// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package supervisor builds the suture supervision tree:
//
//	tickwatch (root)
//	├── ingest-layer      feed ingester, tick watcher
//	├── conflict-layer    tick-triggered diff engine loop
//	└── api-layer         operational HTTP server
//
// Supervisor events are logged through sutureslog via the slog bridge in
// internal/logging. Service wrappers adapting component lifecycles to
// suture.Service live in the services subpackage.
package supervisor
