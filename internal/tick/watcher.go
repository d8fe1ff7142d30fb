// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package tick

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tickwatch/internal/config"
	"github.com/tomtom215/tickwatch/internal/logging"
)

// maxTickResponseSize bounds the tick endpoint response body.
const maxTickResponseSize = 1 << 20

// Watcher polls the external tick endpoint and announces newly observed
// tick ids on the bus. It is the component that "first observes" a tick;
// everything tick-triggered hangs off the bus instead of polling.
type Watcher struct {
	cfg    *config.TickConfig
	bus    *Bus
	client *http.Client
}

// NewWatcher builds a tick watcher publishing to bus.
func NewWatcher(cfg *config.TickConfig, bus *Bus) *Watcher {
	return &Watcher{
		cfg: cfg,
		bus: bus,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Run polls until ctx is cancelled. Poll failures are logged and retried
// on the next interval; the watcher never gives up.
func (w *Watcher) Run(ctx context.Context) error {
	if w.cfg.Endpoint == "" {
		logging.Info().Msg("no tick endpoint configured, tick watcher idle")
		<-ctx.Done()
		return nil
	}

	// Prime immediately so journal stamping has a tick id as soon as
	// the endpoint answers, then settle into the poll interval.
	w.poll(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	tickID, err := w.fetch(ctx)
	if err != nil {
		logging.Warn().Err(err).Str("endpoint", w.cfg.Endpoint).Msg("tick poll failed")
		return
	}
	if tickID == "" {
		logging.Debug().Str("endpoint", w.cfg.Endpoint).Msg("tick endpoint returned no tick")
		return
	}

	if _, err := w.bus.Announce(tickID); err != nil {
		logging.Warn().Err(err).Str("tick_id", tickID).Msg("tick announce failed")
	}
}

// fetch retrieves the latest tick id. The endpoint answers either a JSON
// array of tick objects (latest first) or a single tick object; the
// tick's time string is its id.
func (w *Watcher) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.Endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build tick request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch tick: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tick endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTickResponseSize))
	if err != nil {
		return "", fmt.Errorf("read tick response: %w", err)
	}

	return parseTickID(body)
}

type tickPayload struct {
	Time string `json:"time"`
}

func parseTickID(body []byte) (string, error) {
	var list []tickPayload
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 {
			return "", nil
		}
		return list[0].Time, nil
	}

	var single tickPayload
	if err := json.Unmarshal(body, &single); err != nil {
		return "", fmt.Errorf("parse tick response: %w", err)
	}
	return single.Time, nil
}
