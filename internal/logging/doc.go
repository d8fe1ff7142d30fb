// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package logging provides centralized zerolog-based structured logging
// for Tickwatch.
//
// The package exposes a package-level logger configured once at startup:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("system", name).Msg("State replaced")
//
// JSON output is the production default; console output is available for
// development. Two bridges are provided for libraries with their own
// logging contracts: an slog.Handler (used by the suture event hook) and
// a watermill.LoggerAdapter (used by the tick bus and the NATS feed
// subscriber).
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// chain is silently dropped by zerolog.
package logging
