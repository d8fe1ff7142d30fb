// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tickwatch/config.yaml",
	"/etc/tickwatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			Transport:        "zmq",
			URL:              "tcp://127.0.0.1:9500",
			Topic:            "",
			RecvTimeout:      60 * time.Second,
			BatchSize:        25,
			RetryDelay:       5 * time.Second,
			RetentionWindow:  30 * 24 * time.Hour,
			SweepInterval:    time.Hour,
			DedupeEnabled:    true,
			DedupeWindow:     5 * time.Minute,
			DedupeMaxEntries: 10000,
		},
		NATS: NATSConfig{
			URL:            "nats://127.0.0.1:4222",
			Subject:        "telemetry.events",
			QueueGroup:     "",
			DurableName:    "tickwatch-feed",
			MaxReconnects:  60,
			ReconnectWait:  2 * time.Second,
			ConnectTimeout: 10 * time.Second,
			AckWaitTimeout: 30 * time.Second,
			CloseTimeout:   30 * time.Second,
		},
		Tick: TickConfig{
			Endpoint:     "",
			PollInterval: time.Minute,
			BusBuffer:    16,
		},
		Conflict: ConflictConfig{
			TrackedFactions: nil,
		},
		Notify: NotifyConfig{
			NewConflictURL:   "",
			DayScoredURL:     "",
			ResolvedURL:      "",
			DiagnosticURL:    "",
			Timeout:          10 * time.Second,
			RatePerSecond:    1,
			Burst:            5,
			BreakerThreshold: 5,
			BreakerCooldown:  time.Minute,
		},
		Database: DatabaseConfig{
			Path:                   "/data/tickwatch.duckdb",
			MaxMemory:              "2GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3860,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence: ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars arrive as strings; known slice fields are comma-split.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file. Returns the first file found,
// or empty string if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when they arrive from the environment.
var sliceConfigPaths = []string{
	"conflict.tracked_factions",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from the YAML file)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - FEED_URL -> feed.url
//   - TRACKED_FACTIONS -> conflict.tracked_factions
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Feed mappings
		"feed_transport":          "feed.transport",
		"feed_url":                "feed.url",
		"feed_topic":              "feed.topic",
		"feed_recv_timeout":       "feed.recv_timeout",
		"feed_batch_size":         "feed.batch_size",
		"feed_retry_delay":        "feed.retry_delay",
		"feed_retention_window":   "feed.retention_window",
		"feed_sweep_interval":     "feed.sweep_interval",
		"feed_dedupe_enabled":     "feed.dedupe_enabled",
		"feed_dedupe_window":      "feed.dedupe_window",
		"feed_dedupe_max_entries": "feed.dedupe_max_entries",

		// NATS mappings
		"nats_url":            "nats.url",
		"nats_subject":        "nats.subject",
		"nats_queue_group":      "nats.queue_group",
		"nats_durable_name":     "nats.durable_name",
		"nats_max_reconnects":   "nats.max_reconnects",
		"nats_reconnect_wait":   "nats.reconnect_wait",
		"nats_connect_timeout":  "nats.connect_timeout",
		"nats_ack_wait_timeout": "nats.ack_wait_timeout",
		"nats_close_timeout":    "nats.close_timeout",

		// Tick mappings
		"tick_endpoint":      "tick.endpoint",
		"tick_poll_interval": "tick.poll_interval",
		"tick_bus_buffer":    "tick.bus_buffer",

		// Conflict mappings
		"tracked_factions": "conflict.tracked_factions",

		// Notification mappings
		"notify_new_conflict_url":  "notify.new_conflict_url",
		"notify_day_scored_url":    "notify.day_scored_url",
		"notify_resolved_url":      "notify.resolved_url",
		"notify_diagnostic_url":    "notify.diagnostic_url",
		"notify_timeout":           "notify.timeout",
		"notify_rate_per_second":   "notify.rate_per_second",
		"notify_burst":             "notify.burst",
		"notify_breaker_threshold": "notify.breaker_threshold",
		"notify_breaker_cooldown":  "notify.breaker_cooldown",

		// Database mappings
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Server mappings
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so random environment variables cannot
	// pollute the configuration.
	return ""
}
