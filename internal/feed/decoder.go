// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package feed

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zlib"

	"github.com/tomtom215/tickwatch/internal/database"
	"github.com/tomtom215/tickwatch/internal/models"
)

// maxDecompressedSize bounds zlib inflation. Feed messages are a few KB;
// anything past this is a hostile or corrupt payload.
const maxDecompressedSize = 8 << 20

// Decoded is the product of one handled feed message: the ordered
// statement batch plus the extraction candidate for immediate conflict
// detection.
type Decoded struct {
	MessageID  string
	Envelope   *models.FeedEnvelope
	Statements []database.Statement
	Candidate  models.CandidateEvent
}

// Decode decompresses and parses one raw feed message and produces its
// persistence statements in commit order: journal insert, four
// per-system deletes, system-info insert, faction inserts, conflict
// inserts, and at most one powerplay insert. Pure, no I/O.
//
// Unhandled event kinds and messages without a system name return
// (nil, nil); only decompression and parse failures return an error.
func Decode(raw []byte, tickID string, now time.Time) (*Decoded, error) {
	body, err := inflate(raw)
	if err != nil {
		return nil, fmt.Errorf("decompress message: %w", err)
	}

	var env models.FeedEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}

	msg := &env.Message
	if !models.IsSystemStateEvent(msg.Event) || msg.StarSystem == "" {
		return nil, nil
	}

	messageID := uuid.New().String()

	journal := &models.JournalEvent{
		ID:               messageID,
		SchemaRef:        env.SchemaRef,
		GatewayTimestamp: parseTimePtr(env.Header.GatewayTimestamp),
		EventKind:        msg.Event,
		StarSystem:       msg.StarSystem,
		TickID:           tickID,
		EventTimestamp:   parseTimePtr(msg.Timestamp),
		JSON:             string(body),
		ReceivedAt:       now,
	}

	stmts := make([]database.Statement, 0, 7+len(msg.Factions)+len(msg.Conflicts))
	stmts = append(stmts, database.JournalInsert(journal))
	stmts = append(stmts, database.SystemRowsDelete(msg.StarSystem)...)
	stmts = append(stmts, database.SystemInfoInsert(messageID, msg, now))
	for i := range msg.Factions {
		stmts = append(stmts, database.FactionInsert(msg.StarSystem, messageID, &msg.Factions[i]))
	}
	for i := range msg.Conflicts {
		stmts = append(stmts, database.ConflictRowInsert(msg.StarSystem, messageID, &msg.Conflicts[i]))
	}
	if msg.HasPowerplay() {
		stmts = append(stmts, database.PowerplayInsert(messageID, msg))
	}

	return &Decoded{
		MessageID:  messageID,
		Envelope:   &env,
		Statements: stmts,
		Candidate: models.CandidateEvent{
			EventKind:  msg.Event,
			StarSystem: msg.StarSystem,
			Timestamp:  msg.EventTime(),
			Conflicts:  msg.Conflicts,
		},
	}, nil
}

func inflate(raw []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()

	body, err := io.ReadAll(io.LimitReader(zr, maxDecompressedSize))
	if err != nil {
		return nil, err
	}
	if len(body) == maxDecompressedSize {
		return nil, fmt.Errorf("message exceeds %d byte inflation limit", maxDecompressedSize)
	}
	return body, nil
}

// parseTimePtr parses an optional RFC3339 timestamp, nil when absent or
// unparseable.
func parseTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &ts
}
