// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

//go:build nats

package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/tomtom215/tickwatch/internal/config"
	"github.com/tomtom215/tickwatch/internal/logging"
)

// NATSSource consumes the galaxy feed from a NATS JetStream mirror
// instead of the public ZeroMQ relay. Useful when a site already
// re-publishes the feed onto its own broker.
type NATSSource struct {
	cfg         *config.NATSConfig
	topic       string
	recvTimeout time.Duration

	subscriber *wmNats.Subscriber
	messages   <-chan *message.Message
	cancel     context.CancelFunc
}

// NewNATSSource builds an unconnected NATS feed source.
func NewNATSSource(cfg *config.NATSConfig, topic string, recvTimeout time.Duration) *NATSSource {
	return &NATSSource{
		cfg:         cfg,
		topic:       topic,
		recvTimeout: recvTimeout,
	}
}

// Connect creates the JetStream subscriber and starts consuming.
func (s *NATSSource) Connect() error {
	natsOpts := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(s.cfg.ConnectTimeout),
		nc.ReconnectWait(s.cfg.ReconnectWait),
		nc.MaxReconnects(s.cfg.MaxReconnects),
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              s.cfg.URL,
		QueueGroupPrefix: s.cfg.QueueGroup,
		SubscribersCount: 1, // single-threaded, ordering matters downstream
		AckWaitTimeout:   s.cfg.AckWaitTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			DurablePrefix: s.cfg.DurableName,
		},
	}, logging.NewWatermillAdapter())
	if err != nil {
		return fmt.Errorf("create nats subscriber: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	messages, err := sub.Subscribe(ctx, s.topic)
	if err != nil {
		cancel()
		_ = sub.Close()
		return fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}

	s.subscriber = sub
	s.messages = messages
	s.cancel = cancel
	return nil
}

// Receive returns the next raw compressed payload, acking the broker
// message once its bytes are in hand.
func (s *NATSSource) Receive() ([]byte, error) {
	if s.messages == nil {
		return nil, errors.New("feed: nats source not connected")
	}

	select {
	case msg, ok := <-s.messages:
		if !ok {
			return nil, errors.New("feed: nats subscription closed")
		}
		payload := msg.Payload
		msg.Ack()
		return payload, nil
	case <-time.After(s.recvTimeout):
		return nil, ErrRecvTimeout
	}
}

// Close stops consuming and closes the subscriber.
func (s *NATSSource) Close() error {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.messages = nil
	if s.subscriber != nil {
		err := s.subscriber.Close()
		s.subscriber = nil
		return err
	}
	return nil
}
