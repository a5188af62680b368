// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package config

import (
	"time"

	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/store"
)

// Config is the complete server configuration.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Recommend  recommend.Config `koanf:"recommend"`
	Store      store.Config     `koanf:"store"`
	Events     EventsConfig     `koanf:"events"`
	Rebuild    RebuildConfig    `koanf:"rebuild"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ToLogging converts to the logging package configuration.
func (c LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// EventsConfig configures the in-process message bus.
type EventsConfig struct {
	// Enabled publishes recommendation and feedback events and runs the
	// analytics consumer. Default: true
	Enabled bool                `koanf:"enabled"`
	Bus     events.BusConfig    `koanf:"bus"`
	Router  events.RouterConfig `koanf:"router"`
}

// RebuildConfig schedules collaborative model rebuilds.
type RebuildConfig struct {
	// Enabled runs the periodic rebuild service. Default: true
	Enabled bool `koanf:"enabled"`

	// Interval between rebuilds. Default: 1h
	Interval time.Duration `koanf:"interval"`

	// OnStartup rebuilds once as soon as the service starts. Default: true
	OnStartup bool `koanf:"on_startup"`

	// CacheCleanupInterval evicts expired hybrid cache entries. Default: 1m
	CacheCleanupInterval time.Duration `koanf:"cache_cleanup_interval"`
}

// MetricsConfig configures the metrics and analytics HTTP endpoint.
type MetricsConfig struct {
	// Enabled serves /metrics and /stats. Default: true
	Enabled bool `koanf:"enabled"`

	// Addr is the listen address. Default: :9090
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitRequests per RateLimitWindow per client IP. 0 disables.
	// Default: 300 per 1m
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins may read /stats and /healthz from a browser. Default: none
	CORSOrigins []string `koanf:"cors_origins"`
}

// SupervisorConfig mirrors the suture failure settings.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
