// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package models defines the shared domain types: the feed wire format,
// audit journal rows, and conflict state entries.
//
// The package has no dependencies on other Tickwatch packages so that
// feed, database, and conflict can all share these types freely.
package models
