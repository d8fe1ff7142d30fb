// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package services

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/tickwatch/internal/logging"
)

// TickSource is the tick bus subscription surface.
type TickSource interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// TickProcessor runs the full-scan diff for one tick.
type TickProcessor interface {
	ProcessTick(ctx context.Context, tickID string) error
}

// ConflictService blocks on tick announcements and processes one tick
// to completion before accepting the next. A failed tick is logged and
// acked; the next tick reconciles, so there is no redelivery loop.
type ConflictService struct {
	bus    TickSource
	engine TickProcessor
}

// NewConflictService wires the diff engine to the tick bus.
func NewConflictService(bus TickSource, engine TickProcessor) *ConflictService {
	return &ConflictService{bus: bus, engine: engine}
}

// Serve implements suture.Service.
func (s *ConflictService) Serve(ctx context.Context) error {
	msgs, err := s.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return ctx.Err()
			}
			tickID := string(msg.Payload)
			if err := s.engine.ProcessTick(ctx, tickID); err != nil {
				logging.Error().Err(err).Str("tick_id", tickID).Msg("tick processing failed")
			}
			msg.Ack()
		}
	}
}

func (s *ConflictService) String() string { return "conflict-engine" }
