// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

//go:build !nats

package feed

import (
	"time"

	"github.com/tomtom215/tickwatch/internal/config"
)

// NATSSource is a stub for non-NATS builds.
type NATSSource struct{}

// NewNATSSource returns a stub whose Connect always fails.
func NewNATSSource(_ *config.NATSConfig, _ string, _ time.Duration) *NATSSource {
	return &NATSSource{}
}

func (s *NATSSource) Connect() error { return ErrNATSNotEnabled }

func (s *NATSSource) Receive() ([]byte, error) { return nil, ErrNATSNotEnabled }

func (s *NATSSource) Close() error { return nil }
