// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package feed

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"
)

// ZMQSource subscribes to the galaxy feed's ZeroMQ relay. The relay
// publishes every message on a SUB socket with an empty topic, so the
// default subscription filter is "".
type ZMQSource struct {
	url         string
	topic       string
	recvTimeout time.Duration

	ctx    *zmq.Context
	socket *zmq.Socket
}

// NewZMQSource builds an unconnected ZeroMQ feed source.
func NewZMQSource(url, topic string, recvTimeout time.Duration) *ZMQSource {
	return &ZMQSource{
		url:         url,
		topic:       topic,
		recvTimeout: recvTimeout,
	}
}

// Connect creates the SUB socket and subscribes. Safe to call again
// after Close for reconnection; the previous socket is discarded by
// Close.
func (s *ZMQSource) Connect() error {
	ctx, err := zmq.NewContext()
	if err != nil {
		return fmt.Errorf("create zmq context: %w", err)
	}

	socket, err := ctx.NewSocket(zmq.SUB)
	if err != nil {
		_ = ctx.Term()
		return fmt.Errorf("create zmq socket: %w", err)
	}

	// RCVTIMEO bounds Receive so the ingester can run its retention
	// sweep and observe shutdown even on a silent feed.
	if err := socket.SetRcvtimeo(s.recvTimeout); err != nil {
		_ = socket.Close()
		_ = ctx.Term()
		return fmt.Errorf("set zmq receive timeout: %w", err)
	}
	if err := socket.SetSubscribe(s.topic); err != nil {
		_ = socket.Close()
		_ = ctx.Term()
		return fmt.Errorf("set zmq subscription: %w", err)
	}
	if err := socket.Connect(s.url); err != nil {
		_ = socket.Close()
		_ = ctx.Term()
		return fmt.Errorf("connect to %s: %w", s.url, err)
	}

	s.ctx = ctx
	s.socket = socket
	return nil
}

// Receive returns the next raw compressed frame.
func (s *ZMQSource) Receive() ([]byte, error) {
	if s.socket == nil {
		return nil, errors.New("feed: zmq source not connected")
	}

	msg, err := s.socket.RecvBytes(0)
	if err != nil {
		var errno zmq.Errno
		if errors.As(err, &errno) && errno == zmq.AsErrno(syscall.EAGAIN) {
			return nil, ErrRecvTimeout
		}
		return nil, fmt.Errorf("zmq receive: %w", err)
	}
	return msg, nil
}

// Close tears down the socket and its context.
func (s *ZMQSource) Close() error {
	var firstErr error
	if s.socket != nil {
		if err := s.socket.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.socket = nil
	}
	if s.ctx != nil {
		if err := s.ctx.Term(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.ctx = nil
	}
	return firstErr
}
