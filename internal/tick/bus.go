// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package tick

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/tickwatch/internal/logging"
	"github.com/tomtom215/tickwatch/internal/metrics"
)

// topicTicks is the in-process topic new tick ids are announced on.
const topicTicks = "ticks"

// Bus announces newly observed tick ids to any number of subscribers and
// holds the current tick id for journal stamping. Subscribers receive
// ticks published after they subscribe; there is no replay. A subscriber
// that falls behind blocks only its own bounded buffer.
type Bus struct {
	pubsub *gochannel.GoChannel

	mu      sync.RWMutex
	current string
}

// NewBus creates a tick bus with the given per-subscriber buffer.
func NewBus(buffer int) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: int64(buffer),
		}, logging.NewWatermillAdapter()),
	}
}

// Current returns the most recently observed tick id, empty before the
// first observation.
func (b *Bus) Current() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Announce records tickID as current and broadcasts it. A tick id equal
// to the current one is a no-op; returns whether a publish happened.
func (b *Bus) Announce(tickID string) (bool, error) {
	b.mu.Lock()
	if tickID == b.current {
		b.mu.Unlock()
		return false, nil
	}
	previous := b.current
	b.current = tickID
	b.mu.Unlock()

	metrics.RecordTickObserved()
	logging.Info().
		Str("tick_id", tickID).
		Str("previous", previous).
		Msg("new tick observed")

	msg := message.NewMessage(watermill.NewUUID(), []byte(tickID))
	if err := b.pubsub.Publish(topicTicks, msg); err != nil {
		return false, fmt.Errorf("publish tick %s: %w", tickID, err)
	}
	return true, nil
}

// Subscribe returns a channel of tick announcements. The payload of each
// message is the tick id; consumers must Ack.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	msgs, err := b.pubsub.Subscribe(ctx, topicTicks)
	if err != nil {
		return nil, fmt.Errorf("subscribe to tick topic: %w", err)
	}
	return msgs, nil
}

// Close shuts the underlying pub/sub down, closing all subscriber
// channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
