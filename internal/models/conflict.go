// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package models

import (
	"strings"
	"time"
)

// WarType classifies a faction conflict.
type WarType string

// War types reported by the feed. Anything unrecognized maps to
// WarTypeUnknown rather than failing the message.
const (
	WarTypeWar      WarType = "war"
	WarTypeCivilWar WarType = "civilwar"
	WarTypeElection WarType = "election"
	WarTypeUnknown  WarType = "unknown"
)

// ParseWarType normalizes a feed-reported war type.
func ParseWarType(s string) WarType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "war":
		return WarTypeWar
	case "civilwar":
		return WarTypeCivilWar
	case "election":
		return WarTypeElection
	default:
		return WarTypeUnknown
	}
}

// WinThreshold is the number of won days that resolves a conflict.
const WinThreshold = 4

// ConflictEntry is the persisted state of one active conflict, keyed by
// star system. Exactly one row exists per system with an active tracked
// conflict; the row is deleted the moment either side reaches
// WinThreshold or the system stops reporting a tracked conflict.
type ConflictEntry struct {
	StarSystem string
	WarType    WarType
	Faction1   string
	Faction2   string
	Stake1     string
	Stake2     string
	WonDays1   int
	WonDays2   int
	LastTickID string
	UpdatedAt  time.Time
}

// Involves reports whether the named faction is one of the two sides.
func (e *ConflictEntry) Involves(faction string) bool {
	return e.Faction1 == faction || e.Faction2 == faction
}

// Decided reports whether either side has reached the win threshold.
func (e *ConflictEntry) Decided() bool {
	return e.WonDays1 >= WinThreshold || e.WonDays2 >= WinThreshold
}

// Winner returns the winning faction's name and stake won, valid only
// when Decided. On the (feed-impossible) tie, side one wins.
func (e *ConflictEntry) Winner() (name, stake string) {
	if e.WonDays1 >= WinThreshold {
		return e.Faction1, e.Stake2
	}
	return e.Faction2, e.Stake1
}

// ScoreChangedFrom reports whether either won-days counter advanced
// relative to a prior entry for the same system.
func (e *ConflictEntry) ScoreChangedFrom(prior *ConflictEntry) bool {
	return e.WonDays1 > prior.WonDays1 || e.WonDays2 > prior.WonDays2
}

// JournalEvent is one row of the raw event audit journal, as consumed by
// conflict extraction.
type JournalEvent struct {
	ID               string
	SchemaRef        string
	GatewayTimestamp *time.Time
	EventKind        string
	StarSystem       string
	TickID           string
	EventTimestamp   *time.Time
	JSON             string
	ReceivedAt       time.Time
}

// CandidateEvent is the extraction input shared by both diff engine entry
// points: the journal path parses rows back into candidates, while the
// immediate-detection path builds them from freshly observed events.
type CandidateEvent struct {
	EventKind  string
	StarSystem string
	Timestamp  time.Time
	Conflicts  []ConflictSnapshot
}
