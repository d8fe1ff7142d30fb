// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package config loads and validates Tickwatch configuration.
//
// Configuration is layered with Koanf v2: struct defaults, then an
// optional YAML config file, then environment variables. Environment
// variables override everything; unknown variables are ignored.
package config
