// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package database

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// SQL argument helpers. database/sql writes a typed nil interface value
// as a literal, so optional fields are converted to untyped nil here.

func nullStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullInt64(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullFloat64(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// nullRaw stores a raw JSON fragment as its text form, NULL when absent.
func nullRaw(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// joinPowers flattens a powers list into the comma-separated text column.
func joinPowers(powers []string) string {
	return strings.Join(powers, ", ")
}
