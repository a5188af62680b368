// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cadence/internal/store"
)

// isolate points CONFIG_PATH at a missing file so a stray config.yaml never
// affects the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Store.Backend != store.BackendMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Recommend.Weights.Content != 0.4 || cfg.Recommend.Matrix.MinInteractions != 5 {
		t.Errorf("recommend defaults not applied: %+v", cfg.Recommend.Weights)
	}
	if cfg.Rebuild.Interval != time.Hour || !cfg.Rebuild.OnStartup {
		t.Errorf("Rebuild = %+v", cfg.Rebuild)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"CADENCE_LOG_LEVEL", "logging.level"},
		{"CADENCE_MONGO_URI", "store.mongo.uri"},
		{"CADENCE_NMF_COMPONENTS", "recommend.factorization.components"},
		{"CADENCE_DEFAULT_GENRES", "recommend.prediction.default_genres"},
		{"CADENCE_BREAKER_TIMEOUT", "store.breaker.timeout"},
		{"CADENCE_DIVERSITY_LAMBDA", "recommend.diversity.lambda"},
		{"CADENCE_METRICS_CORS_ORIGINS", "metrics.cors_origins"},
		{"CADENCE_UNKNOWN_THING", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("CADENCE_LOG_LEVEL", "debug")
	t.Setenv("CADENCE_STORE_BACKEND", "mongo")
	t.Setenv("CADENCE_MONGO_URI", "mongodb://db:27017")
	t.Setenv("CADENCE_NMF_COMPONENTS", "8")
	t.Setenv("CADENCE_CACHE_TTL", "30s")
	t.Setenv("CADENCE_DEFAULT_GENRES", "jazz, soul ,")
	t.Setenv("CADENCE_METRICS_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CADENCE_DIVERSITY_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Store.Backend != store.BackendMongo || cfg.Store.Mongo.URI != "mongodb://db:27017" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Mongo.Database != "cadence" {
		t.Errorf("unset mongo database lost its default: %q", cfg.Store.Mongo.Database)
	}
	if cfg.Recommend.Factorization.Components != 8 {
		t.Errorf("Components = %d", cfg.Recommend.Factorization.Components)
	}
	if cfg.Recommend.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v", cfg.Recommend.Cache.TTL)
	}
	if want := []string{"jazz", "soul"}; !reflect.DeepEqual(cfg.Recommend.Prediction.DefaultGenres, want) {
		t.Errorf("DefaultGenres = %v, want %v", cfg.Recommend.Prediction.DefaultGenres, want)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.Metrics.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Metrics.CORSOrigins, want)
	}
	if !cfg.Recommend.Diversity.Enabled || cfg.Recommend.Diversity.Lambda != 0.7 {
		t.Errorf("Diversity = %+v", cfg.Recommend.Diversity)
	}
}

func TestLoadConfigFileAndPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.yaml")
	yaml := `
logging:
  level: warn
recommend:
  weights:
    content: 0.5
rebuild:
  interval: 10m
metrics:
  addr: ":9191"
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("CADENCE_METRICS_ADDR", ":9292")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("file value lost: level = %q", cfg.Logging.Level)
	}
	if cfg.Recommend.Weights.Content != 0.5 || cfg.Recommend.Weights.Collaborative != 0.3 {
		t.Errorf("weights = %+v", cfg.Recommend.Weights)
	}
	if cfg.Rebuild.Interval != 10*time.Minute {
		t.Errorf("Rebuild.Interval = %v", cfg.Rebuild.Interval)
	}
	if cfg.Metrics.Addr != ":9292" {
		t.Errorf("env did not override file: addr = %q", cfg.Metrics.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative weight", func(c *Config) { c.Recommend.Weights.Content = -0.1 }, "weights.content"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"mongo without uri", func(c *Config) { c.Store.Backend = store.BackendMongo; c.Store.Mongo.URI = "" }, "store.mongo.uri"},
		{"breaker threshold", func(c *Config) { c.Store.Breaker.FailureThreshold = 0 }, "failure_threshold"},
		{"rebuild interval", func(c *Config) { c.Rebuild.Interval = 0 }, "rebuild.interval"},
		{"metrics addr", func(c *Config) { c.Metrics.Addr = " " }, "metrics.addr"},
		{"rate limit window", func(c *Config) { c.Metrics.RateLimitWindow = 0 }, "metrics.rate_limit_window"},
		{"negative retries", func(c *Config) { c.Events.Router.RetryMaxRetries = -1 }, "retry_max_retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}

	t.Run("disabled sections skip checks", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Rebuild.Enabled = false
		cfg.Rebuild.Interval = 0
		cfg.Metrics.Enabled = false
		cfg.Metrics.Addr = ""
		cfg.Store.BreakerEnabled = false
		cfg.Store.Breaker.FailureThreshold = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("CADENCE_STORE_BACKEND", "sqlite")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted an unknown backend")
	}
}

func TestToLogging(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "console", Caller: true}.ToLogging()
	if lc.Level != "debug" || lc.Format != "console" || !lc.Caller || lc.Output == nil {
		t.Errorf("ToLogging() = %+v", lc)
	}
}
