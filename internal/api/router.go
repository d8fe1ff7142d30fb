// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package api provides the operational HTTP surface: health and
// Prometheus metrics on a Chi router. There is no product API here.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tickwatch/internal/logging"
)

// Pinger is the datastore liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TickProvider reports the current tick for the health payload.
type TickProvider interface {
	Current() string
}

// Router serves the ops endpoints.
type Router struct {
	db    Pinger
	ticks TickProvider
}

// NewRouter builds an ops router.
func NewRouter(db Pinger, ticks TickProvider) *Router {
	return &Router{db: db, ticks: ticks}
}

// Handler assembles the route tree.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", rt.health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	CurrentTick string `json:"current_tick,omitempty"`
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK
	if err := rt.db.Ping(ctx); err != nil {
		logging.Warn().Err(err).Msg("health check database ping failed")
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if rt.ticks != nil {
		resp.CurrentTick = rt.ticks.Current()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Debug().Err(err).Msg("health response write failed")
	}
}
