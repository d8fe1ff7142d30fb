// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tickwatch/internal/config"
	"github.com/tomtom215/tickwatch/internal/logging"
	"github.com/tomtom215/tickwatch/internal/metrics"
)

// Notifier delivers a text message to a configured endpoint. Delivery is
// fire-and-forget: Notify never returns an error, failures are logged
// and counted only. An empty endpoint disables that call.
type Notifier interface {
	Notify(ctx context.Context, endpoint, text string)
}

// WebhookNotifier posts Discord-style JSON payloads. A circuit breaker
// stops a dead endpoint from costing a timeout per transition, and a
// rate limiter keeps bursts of transitions under webhook limits.
type WebhookNotifier struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	limiter *rate.Limiter
}

// payload is the webhook body.
type payload struct {
	Content string `json:"content"`
}

// NewWebhookNotifier builds a notifier from config.
func NewWebhookNotifier(cfg *config.NotifyConfig) *WebhookNotifier {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "webhook",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("notification breaker state changed")
		},
	})

	return &WebhookNotifier{
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}
}

// Notify posts text to endpoint. Best-effort: every failure path logs,
// records a metric, and returns.
func (n *WebhookNotifier) Notify(ctx context.Context, endpoint, text string) {
	if endpoint == "" {
		return
	}

	if err := n.limiter.Wait(ctx); err != nil {
		logging.Debug().Err(err).Msg("notification rate wait aborted")
		metrics.RecordNotification("rate_limited")
		return
	}

	_, err := n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.post(ctx, endpoint, text)
	})
	if err != nil {
		logging.Warn().Err(err).Str("endpoint", endpoint).Msg("notification delivery failed")
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			metrics.RecordNotification("breaker_open")
		} else {
			metrics.RecordNotification("delivery_error")
		}
		return
	}

	metrics.RecordNotification("")
}

func (n *WebhookNotifier) post(ctx context.Context, endpoint, text string) error {
	body, err := json.Marshal(payload{Content: text})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
