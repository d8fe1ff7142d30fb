// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration for every Tickwatch component.
type Config struct {
	Feed     FeedConfig     `koanf:"feed"`
	NATS     NATSConfig     `koanf:"nats"`
	Tick     TickConfig     `koanf:"tick"`
	Conflict ConflictConfig `koanf:"conflict"`
	Notify   NotifyConfig   `koanf:"notify"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// FeedConfig configures the ingestion client and its connection to the
// upstream telemetry feed.
type FeedConfig struct {
	// Transport selects the feed transport: "zmq" (default) or "nats".
	// The NATS transport requires a binary built with the nats tag.
	Transport string `koanf:"transport"`

	// URL is the feed endpoint address (e.g. tcp://127.0.0.1:9500 for zmq).
	URL string `koanf:"url"`

	// Topic is the ZeroMQ subscription prefix; empty subscribes to everything.
	Topic string `koanf:"topic"`

	// RecvTimeout bounds a single blocking receive so the consume loop can
	// observe cancellation and detect dead upstreams.
	RecvTimeout time.Duration `koanf:"recv_timeout"`

	// BatchSize is the number of decoded messages accumulated before the
	// statement batch is committed as one transaction.
	BatchSize int `koanf:"batch_size"`

	// RetryDelay is the fixed delay before reconnecting a failed feed
	// connection. The feed is lossy by nature, so reconnects do not resume.
	RetryDelay time.Duration `koanf:"retry_delay"`

	// RetentionWindow is how long audit journal rows are kept.
	RetentionWindow time.Duration `koanf:"retention_window"`

	// SweepInterval is how often the retention sweep runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// DedupeEnabled enables duplicate suppression on raw payload digests.
	DedupeEnabled bool `koanf:"dedupe_enabled"`

	// DedupeWindow is how long a payload digest counts as recently seen.
	DedupeWindow time.Duration `koanf:"dedupe_window"`

	// DedupeMaxEntries bounds the duplicate-suppression cache.
	DedupeMaxEntries int `koanf:"dedupe_max_entries"`
}

// NATSConfig configures the optional NATS relay feed transport.
type NATSConfig struct {
	URL            string        `koanf:"url"`
	Subject        string        `koanf:"subject"`
	QueueGroup     string        `koanf:"queue_group"`
	DurableName    string        `koanf:"durable_name"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	AckWaitTimeout time.Duration `koanf:"ack_wait_timeout"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
}

// TickConfig configures tick detection and the in-process tick bus.
type TickConfig struct {
	// Endpoint is the HTTP endpoint reporting the current tick id.
	Endpoint string `koanf:"endpoint"`

	// PollInterval is how often the watcher polls the tick endpoint.
	PollInterval time.Duration `koanf:"poll_interval"`

	// BusBuffer is the bounded per-subscriber queue on the tick bus.
	BusBuffer int `koanf:"bus_buffer"`
}

// ConflictConfig configures the conflict diff engine.
type ConflictConfig struct {
	// TrackedFactions lists the faction names whose conflicts are tracked.
	TrackedFactions []string `koanf:"tracked_factions"`
}

// NotifyConfig configures webhook notification delivery.
type NotifyConfig struct {
	// Per-category webhook endpoints. An empty endpoint disables that
	// category; delivery is always best-effort.
	NewConflictURL string `koanf:"new_conflict_url"`
	DayScoredURL   string `koanf:"day_scored_url"`
	ResolvedURL    string `koanf:"resolved_url"`
	DiagnosticURL  string `koanf:"diagnostic_url"`

	// Timeout bounds one webhook POST so a dead endpoint cannot stall
	// tick processing.
	Timeout time.Duration `koanf:"timeout"`

	// RatePerSecond and Burst bound outbound webhook traffic.
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`

	// BreakerThreshold is the consecutive-failure count that opens the
	// delivery circuit breaker.
	BreakerThreshold uint32 `koanf:"breaker_threshold"`

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
}

// DatabaseConfig configures the embedded DuckDB datastore.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// ServerConfig configures the operational HTTP server (/healthz, /metrics).
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would leave a component
// unable to start. It returns the first problem found.
func (c *Config) Validate() error {
	switch c.Feed.Transport {
	case "zmq", "nats":
	default:
		return fmt.Errorf("feed.transport must be zmq or nats, got %q", c.Feed.Transport)
	}

	if c.Feed.URL == "" {
		return fmt.Errorf("feed.url is required")
	}
	if c.Feed.BatchSize <= 0 {
		return fmt.Errorf("feed.batch_size must be positive, got %d", c.Feed.BatchSize)
	}
	if c.Feed.RetryDelay <= 0 {
		return fmt.Errorf("feed.retry_delay must be positive")
	}
	if c.Feed.RetentionWindow <= 0 {
		return fmt.Errorf("feed.retention_window must be positive")
	}
	if c.Feed.SweepInterval <= 0 {
		return fmt.Errorf("feed.sweep_interval must be positive")
	}
	if c.Feed.SweepInterval > c.Feed.RetentionWindow {
		return fmt.Errorf("feed.sweep_interval exceeds feed.retention_window")
	}

	if len(c.Conflict.TrackedFactions) == 0 {
		return fmt.Errorf("conflict.tracked_factions must name at least one faction")
	}
	for _, name := range c.Conflict.TrackedFactions {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("conflict.tracked_factions contains an empty name")
		}
	}

	if c.Tick.Endpoint != "" {
		if _, err := url.ParseRequestURI(c.Tick.Endpoint); err != nil {
			return fmt.Errorf("tick.endpoint is not a valid URL: %w", err)
		}
	}
	if c.Tick.PollInterval <= 0 {
		return fmt.Errorf("tick.poll_interval must be positive")
	}
	if c.Tick.BusBuffer <= 0 {
		return fmt.Errorf("tick.bus_buffer must be positive")
	}

	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("notify.timeout must be positive")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}

	return nil
}
