// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Feed wire format. Every field except Event and StarSystem is optional by
// design: the upstream feed only structurally validates its payloads, so
// absent fields decode to nil rather than failing the message.

// FeedEnvelope is the top-level shape of one decompressed feed message.
type FeedEnvelope struct {
	SchemaRef string      `json:"$schemaRef"`
	Header    FeedHeader  `json:"header"`
	Message   GalaxyEvent `json:"message"`
}

// FeedHeader carries feed-gateway metadata.
type FeedHeader struct {
	GatewayTimestamp *string `json:"gatewayTimestamp"`
	SoftwareName     *string `json:"softwareName"`
	SoftwareVersion  *string `json:"softwareVersion"`
}

// GalaxyEvent is the embedded journal event. Only the two system-state
// event kinds (EventJump and EventLocation) carry the fields below; other
// kinds are ignored by the decoder.
type GalaxyEvent struct {
	Event     string  `json:"event"`
	Timestamp *string `json:"timestamp"`

	StarSystem string `json:"StarSystem"`

	Population       *int64         `json:"Population"`
	SystemSecurity   *string        `json:"SystemSecurity"`
	SystemGovernment *string        `json:"SystemGovernment"`
	SystemAllegiance *string        `json:"SystemAllegiance"`
	SystemFaction    *SystemFaction `json:"SystemFaction"`
	ControllingPower *string        `json:"ControllingPower"`

	Factions  []FactionSnapshot  `json:"Factions"`
	Conflicts []ConflictSnapshot `json:"Conflicts"`

	Powers                        []string `json:"Powers"`
	PowerplayState                *string  `json:"PowerplayState"`
	PowerplayStateControlProgress *float64 `json:"PowerplayStateControlProgress"`
	PowerplayStateReinforcement   *int64   `json:"PowerplayStateReinforcement"`
	PowerplayStateUndermining     *int64   `json:"PowerplayStateUndermining"`
}

// Recognized system-state event kinds.
const (
	EventJump     = "FSDJump"
	EventLocation = "Location"
)

// IsSystemStateEvent reports whether the event kind carries per-system
// derived state.
func IsSystemStateEvent(kind string) bool {
	return kind == EventJump || kind == EventLocation
}

// HasPowerplay reports whether the event carries any power-projection
// fields. The decoder emits a powerplay row only when this is true.
func (e *GalaxyEvent) HasPowerplay() bool {
	return len(e.Powers) > 0 ||
		e.PowerplayState != nil ||
		e.PowerplayStateControlProgress != nil ||
		e.PowerplayStateReinforcement != nil ||
		e.PowerplayStateUndermining != nil
}

// EventTime parses the event's own timestamp. Returns the zero time when
// the field is absent or unparseable; candidates without a usable time
// lose every last-write-wins comparison.
func (e *GalaxyEvent) EventTime() time.Time {
	if e.Timestamp == nil {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, *e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// SystemFaction names the faction controlling a system.
type SystemFaction struct {
	Name         *string `json:"Name"`
	FactionState *string `json:"FactionState"`
}

// FactionSnapshot is one entry of a message's Factions array. The state
// lists are kept as raw JSON and stored verbatim.
type FactionSnapshot struct {
	Name             *string         `json:"Name"`
	Influence        *float64        `json:"Influence"`
	FactionState     *string         `json:"FactionState"`
	Allegiance       *string         `json:"Allegiance"`
	Government       *string         `json:"Government"`
	Happiness        *string         `json:"Happiness"`
	ActiveStates     json.RawMessage `json:"ActiveStates"`
	PendingStates    json.RawMessage `json:"PendingStates"`
	RecoveringStates json.RawMessage `json:"RecoveringStates"`
}

// ConflictSnapshot is one entry of a message's Conflicts array.
type ConflictSnapshot struct {
	WarType  *string         `json:"WarType"`
	Status   *string         `json:"Status"`
	Faction1 ConflictFaction `json:"Faction1"`
	Faction2 ConflictFaction `json:"Faction2"`
}

// ConflictFaction is one side of a conflict.
type ConflictFaction struct {
	Name    *string `json:"Name"`
	Stake   *string `json:"Stake"`
	WonDays *int    `json:"WonDays"`
}
