// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package main is the entry point for the Tickwatch server.
//
// Tickwatch ingests the public galaxy telemetry feed of a space-trading
// simulation, keeps the latest known derived state per star system in
// DuckDB, and watches faction conflicts involving a configured set of
// tracked factions: each game tick the conflict diff engine replays the
// tick's journal, diffs it against persisted conflict state, and
// announces new, scored, and resolved conflicts to webhook endpoints.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml,
//     environment variables)
//  2. Logging: zerolog, configured from config
//  3. Database: DuckDB schema initialization
//  4. Components: tick bus + watcher, feed source + ingester, conflict
//     engine, webhook notifier, ops HTTP server
//  5. Supervision tree: suture root with ingest/conflict/api layers
//
// # Build tags
//
//	go build ./cmd/server              # ZeroMQ feed transport only
//	go build -tags nats ./cmd/server   # adds the NATS relay transport
//
// # Signal handling
//
// SIGINT and SIGTERM stop the supervision tree: the ingester flushes
// its partial batch, the HTTP server drains in-flight requests (10s
// timeout), and the database is checkpointed and closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/tickwatch/internal/api"
	"github.com/tomtom215/tickwatch/internal/config"
	"github.com/tomtom215/tickwatch/internal/conflict"
	"github.com/tomtom215/tickwatch/internal/database"
	"github.com/tomtom215/tickwatch/internal/feed"
	"github.com/tomtom215/tickwatch/internal/logging"
	"github.com/tomtom215/tickwatch/internal/notify"
	"github.com/tomtom215/tickwatch/internal/supervisor"
	"github.com/tomtom215/tickwatch/internal/supervisor/services"
	"github.com/tomtom215/tickwatch/internal/tick"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("feed_transport", cfg.Feed.Transport).
		Str("database", cfg.Database.Path).
		Int("tracked_factions", len(cfg.Conflict.TrackedFactions)).
		Msg("starting tickwatch")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("database close failed")
		}
	}()

	// Tick distribution.
	bus := tick.NewBus(cfg.Tick.BusBuffer)
	defer func() { _ = bus.Close() }()
	watcher := tick.NewWatcher(&cfg.Tick, bus)

	// Conflict pipeline.
	notifier := notify.NewWebhookNotifier(&cfg.Notify)
	engine := conflict.NewEngine(cfg.Conflict.TrackedFactions, db, db, bus, notifier, &cfg.Notify)

	// Feed pipeline; the engine doubles as the immediate-detection hook.
	source, err := feed.NewSource(cfg)
	if err != nil {
		return err
	}
	ingester := feed.NewIngester(&cfg.Feed, source, db, bus, engine)

	// Ops HTTP surface.
	router := api.NewRouter(db, bus)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(slog.New(logging.NewSlogHandler()), supervisor.DefaultTreeConfig())
	tree.AddIngestService(services.NewRunnerService("feed-ingester", ingester))
	tree.AddIngestService(services.NewRunnerService("tick-watcher", watcher))
	tree.AddConflictService(services.NewConflictService(bus, engine))
	tree.AddAPIService(services.NewHTTPService(httpServer, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", httpServer.Addr).Msg("supervision tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervision tree: %w", err)
	}

	logging.Info().Msg("shutdown complete")
	return nil
}
