// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

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

	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/store"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cadence/config.yaml",
	"/etc/cadence/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix marks the environment variables Load reads.
const EnvPrefix = "CADENCE_"

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: *recommend.DefaultConfig(),
		Store:     store.DefaultConfig(),
		Events: EventsConfig{
			Enabled: true,
			Bus:     events.DefaultBusConfig(),
			Router:  events.DefaultRouterConfig(),
		},
		Rebuild: RebuildConfig{
			Enabled:              true,
			Interval:             time.Hour,
			OnStartup:            true,
			CacheCleanupInterval: time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:           true,
			Addr:              ":9090",
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: CADENCE_* overrides
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

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

// findConfigFile returns the first existing config file, or "".
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

// sliceConfigPaths are parsed from comma-separated strings when set by env.
var sliceConfigPaths = []string{
	"recommend.prediction.default_genres",
	"metrics.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
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

// envMappings maps CADENCE_-stripped, lowercased variable names to koanf
// paths. Unmapped variables are ignored.
var envMappings = map[string]string{
	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Hybrid weights
	"weight_content":        "recommend.weights.content",
	"weight_collaborative":  "recommend.weights.collaborative",
	"weight_genre_boost":    "recommend.weights.genre_boost",
	"weight_language_boost": "recommend.weights.language_boost",

	// Matrix
	"min_interactions": "recommend.matrix.min_interactions",

	// Factorization
	"nmf_components": "recommend.factorization.components",
	"nmf_max_iter":   "recommend.factorization.max_iter",
	"nmf_tolerance":  "recommend.factorization.tolerance",
	"nmf_alpha":      "recommend.factorization.alpha",
	"nmf_seed":       "recommend.factorization.seed",
	"nmf_workers":    "recommend.factorization.workers",
	"nmf_timeout":    "recommend.factorization.timeout",

	// Content
	"content_max_features": "recommend.content.max_features",
	"content_max_ngram":    "recommend.content.max_ngram",
	"content_workers":      "recommend.content.workers",

	// Behavior and prediction
	"behavior_window_days":   "recommend.behavior.window_days",
	"behavior_query_limit":   "recommend.behavior.query_limit",
	"default_genres":         "recommend.prediction.default_genres",
	"high_activity":          "recommend.prediction.high_activity",
	"high_discovery_rate":    "recommend.prediction.high_discovery_rate",
	"artist_candidates":      "recommend.prediction.artist_candidates",
	"min_artist_score":       "recommend.prediction.min_artist_score",
	"min_search_frequency":   "recommend.prediction.min_search_frequency",
	"min_language_frequency": "recommend.prediction.min_language_frequency",

	// Limits, cache and diversity
	"default_limit":     "recommend.limits.default_n",
	"max_limit":         "recommend.limits.max_n",
	"cache_enabled":     "recommend.cache.enabled",
	"cache_ttl":         "recommend.cache.ttl",
	"cache_max_entries": "recommend.cache.max_entries",
	"diversity_enabled": "recommend.diversity.enabled",
	"diversity_lambda":  "recommend.diversity.lambda",

	// Store
	"store_backend":         "store.backend",
	"mongo_uri":             "store.mongo.uri",
	"mongo_database":        "store.mongo.database",
	"mongo_connect_timeout": "store.mongo.connect_timeout",
	"mongo_ensure_indexes":  "store.mongo.ensure_indexes",
	"breaker_enabled":       "store.breaker_enabled",
	"breaker_max_requests":  "store.breaker.max_requests",
	"breaker_interval":      "store.breaker.interval",
	"breaker_timeout":       "store.breaker.timeout",
	"breaker_failures":      "store.breaker.failure_threshold",

	// Events
	"events_enabled":       "events.enabled",
	"events_buffer":        "events.bus.output_buffer",
	"events_persistent":    "events.bus.persistent",
	"events_retry_count":   "events.router.retry_max_retries",
	"events_retry_initial": "events.router.retry_initial_interval",
	"events_close_timeout": "events.router.close_timeout",

	// Rebuild
	"rebuild_enabled":        "rebuild.enabled",
	"rebuild_interval":       "rebuild.interval",
	"rebuild_on_startup":     "rebuild.on_startup",
	"cache_cleanup_interval": "rebuild.cache_cleanup_interval",

	// Metrics
	"metrics_enabled":             "metrics.enabled",
	"metrics_addr":                "metrics.addr",
	"metrics_rate_limit_requests": "metrics.rate_limit_requests",
	"metrics_rate_limit_window":   "metrics.rate_limit_window",
	"metrics_cors_origins":        "metrics.cors_origins",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
// Examples:
//   - CADENCE_LOG_LEVEL -> logging.level
//   - CADENCE_MONGO_URI -> store.mongo.uri
//   - CADENCE_NMF_COMPONENTS -> recommend.factorization.components
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
	return envMappings[key]
}
