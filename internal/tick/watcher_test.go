// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package tick

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/tickwatch/internal/config"
)

func TestParseTickID(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "array of ticks uses the first",
			body: `[{"time": "2026-08-01T12:00:00Z"}, {"time": "2026-07-31T12:00:00Z"}]`,
			want: "2026-08-01T12:00:00Z",
		},
		{
			name: "single tick object",
			body: `{"time": "2026-08-01T12:00:00Z"}`,
			want: "2026-08-01T12:00:00Z",
		},
		{
			name: "empty array yields no tick",
			body: `[]`,
			want: "",
		},
		{
			name:    "garbage errors",
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTickID([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTickID error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseTickID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWatcherAnnouncesNewTicks(t *testing.T) {
	var current atomic.Value
	current.Store("2026-08-01T12:00:00Z")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"time": "` + current.Load().(string) + `"}]`))
	}))
	defer srv.Close()

	bus := NewBus(4)
	defer func() { _ = bus.Close() }()

	watcher := NewWatcher(&config.TickConfig{
		Endpoint:     srv.URL,
		PollInterval: 10 * time.Millisecond,
	}, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = watcher.Run(ctx)
	}()

	// First observation.
	select {
	case msg := <-msgs:
		if got := string(msg.Payload); got != "2026-08-01T12:00:00Z" {
			t.Errorf("first tick = %q", got)
		}
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never announced the first tick")
	}

	// Endpoint advances; watcher must announce exactly the new id.
	current.Store("2026-08-02T12:00:00Z")
	select {
	case msg := <-msgs:
		if got := string(msg.Payload); got != "2026-08-02T12:00:00Z" {
			t.Errorf("second tick = %q", got)
		}
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never announced the changed tick")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherSurvivesEndpointErrors(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if failing.Load() {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"time": "2026-08-01T12:00:00Z"}]`))
	}))
	defer srv.Close()

	bus := NewBus(4)
	defer func() { _ = bus.Close() }()

	watcher := NewWatcher(&config.TickConfig{
		Endpoint:     srv.URL,
		PollInterval: 10 * time.Millisecond,
	}, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = watcher.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	if got := bus.Current(); got != "" {
		t.Errorf("Current during endpoint failure = %q, want empty", got)
	}

	failing.Store(false)

	deadline := time.Now().Add(5 * time.Second)
	for bus.Current() == "" {
		if time.Now().After(deadline) {
			t.Fatal("watcher never recovered from endpoint failure")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
