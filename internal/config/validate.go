// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/store"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level))
	}
	if f := strings.ToLower(c.Logging.Format); f != "json" && f != "console" {
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	if err := c.Recommend.Validate(); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, c.validateStore()...)

	if c.Events.Bus.OutputChannelBuffer < 0 {
		errs = append(errs, fmt.Errorf("events.bus.output_buffer must be non-negative, got %d", c.Events.Bus.OutputChannelBuffer))
	}
	if c.Events.Router.RetryMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("events.router.retry_max_retries must be non-negative, got %d", c.Events.Router.RetryMaxRetries))
	}

	if c.Rebuild.Enabled && c.Rebuild.Interval <= 0 {
		errs = append(errs, fmt.Errorf("rebuild.interval must be positive when rebuilds are enabled, got %v", c.Rebuild.Interval))
	}
	if c.Rebuild.CacheCleanupInterval < 0 {
		errs = append(errs, fmt.Errorf("rebuild.cache_cleanup_interval must be non-negative, got %v", c.Rebuild.CacheCleanupInterval))
	}

	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Addr) == "" {
		errs = append(errs, errors.New("metrics.addr is required when metrics are enabled"))
	}
	if c.Metrics.RateLimitRequests > 0 && c.Metrics.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Errorf("metrics.rate_limit_window must be positive when rate limiting, got %v", c.Metrics.RateLimitWindow))
	}

	if c.Supervisor.FailureThreshold < 0 || c.Supervisor.FailureDecay < 0 {
		errs = append(errs, errors.New("supervisor failure threshold and decay must be non-negative"))
	}

	return errors.Join(errs...)
}

func (c *Config) validateStore() []error {
	var errs []error
	switch c.Store.Backend {
	case store.BackendMemory, "":
	case store.BackendMongo:
		if strings.TrimSpace(c.Store.Mongo.URI) == "" {
			errs = append(errs, errors.New("store.mongo.uri is required for the mongo backend"))
		}
		if strings.TrimSpace(c.Store.Mongo.Database) == "" {
			errs = append(errs, errors.New("store.mongo.database is required for the mongo backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %s or %s, got %q", store.BackendMemory, store.BackendMongo, c.Store.Backend))
	}
	if c.Store.BreakerEnabled {
		if c.Store.Breaker.FailureThreshold == 0 {
			errs = append(errs, errors.New("store.breaker.failure_threshold must be positive"))
		}
		if c.Store.Breaker.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("store.breaker.timeout must be positive, got %v", c.Store.Breaker.Timeout))
		}
	}
	return errs
}
