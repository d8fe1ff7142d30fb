// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tickwatch/internal/config"
)

func testNotifyConfig() *config.NotifyConfig {
	return &config.NotifyConfig{
		Timeout:          5 * time.Second,
		RatePerSecond:    1000,
		Burst:            1000,
		BreakerThreshold: 3,
		BreakerCooldown:  time.Minute,
	}
}

func TestWebhookNotifierDelivers(t *testing.T) {
	var gotBody atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody.Store(body)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want application/json", ct)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(testNotifyConfig())
	n.Notify(context.Background(), srv.URL, "Conflict started in Sol")

	raw, ok := gotBody.Load().([]byte)
	if !ok {
		t.Fatal("webhook endpoint never received a request")
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("unmarshal webhook body: %v", err)
	}
	if p.Content != "Conflict started in Sol" {
		t.Errorf("content = %q", p.Content)
	}
}

func TestWebhookNotifierEmptyEndpoint(t *testing.T) {
	n := NewWebhookNotifier(testNotifyConfig())
	// Must be a silent no-op, not a panic or a dial attempt.
	n.Notify(context.Background(), "", "ignored")
}

func TestWebhookNotifierSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(testNotifyConfig())
	// No return value to check: failure must not propagate or panic.
	n.Notify(context.Background(), srv.URL, "doomed")
}

func TestWebhookNotifierBreakerOpens(t *testing.T) {
	var requests atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testNotifyConfig()
	cfg.BreakerThreshold = 2
	n := NewWebhookNotifier(cfg)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		n.Notify(ctx, srv.URL, "doomed")
	}

	// After two consecutive failures the breaker opens and stops
	// hitting the endpoint.
	if got := requests.Load(); got != 2 {
		t.Errorf("endpoint requests = %d, want 2 (breaker open afterwards)", got)
	}
}
