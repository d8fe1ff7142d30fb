// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package feed

import (
	"errors"
	"fmt"

	"github.com/tomtom215/tickwatch/internal/config"
)

// ErrRecvTimeout is returned by Source.Receive when no message arrived
// within the receive timeout. The ingester treats it as an idle wakeup:
// check shutdown, run the retention sweep if due, receive again.
var ErrRecvTimeout = errors.New("feed: receive timed out")

// ErrNATSNotEnabled is returned when the NATS feed transport is selected
// on a binary built without the nats tag.
var ErrNATSNotEnabled = errors.New("feed: nats transport requires a build with -tags nats")

// Source is a connection to the external galaxy feed. Implementations
// are not safe for concurrent use; the ingester drives a source from a
// single goroutine.
type Source interface {
	// Connect establishes (or re-establishes) the subscription.
	Connect() error

	// Receive blocks for the next raw compressed message, up to the
	// configured receive timeout. Returns ErrRecvTimeout on idle.
	Receive() ([]byte, error)

	// Close tears the subscription down. Receive must not be called
	// after Close.
	Close() error
}

// NewSource builds the configured feed transport.
func NewSource(cfg *config.Config) (Source, error) {
	switch cfg.Feed.Transport {
	case "zmq":
		return NewZMQSource(cfg.Feed.URL, cfg.Feed.Topic, cfg.Feed.RecvTimeout), nil
	case "nats":
		return NewNATSSource(&cfg.NATS, cfg.NATS.Subject, cfg.Feed.RecvTimeout), nil
	default:
		return nil, fmt.Errorf("feed: unknown transport %q", cfg.Feed.Transport)
	}
}
