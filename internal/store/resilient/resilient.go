// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package resilient decorates store implementations with circuit breakers so
// a failing backend is short-circuited instead of piling up timeouts.
//
// "Not found" and caller cancellation are successful outcomes for the
// breaker: neither says anything about backend health.
package resilient

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/recommend"
)

// ErrOpen is returned while a breaker rejects calls.
var ErrOpen = gobreaker.ErrOpenState

// Config holds circuit breaker settings shared by every store.
type Config struct {
	// MaxRequests allowed through while half-open. Default: 3
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval clears counts while closed. Default: 1m
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open. Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// FailureThreshold trips after this many consecutive failures. Default: 5
	FailureThreshold uint32 `koanf:"failure_threshold"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// NewCircuitBreaker creates a breaker that logs and exports its state.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCircuitBreaker(name string, cfg Config, logger zerolog.Logger) *gobreaker.CircuitBreaker[any] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, recommend.ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if v != nil {
			if t, ok := v.(T); ok {
				return t, err
			}
		}
		return zero, err
	}
	return v.(T), nil
}

// Interactions guards a recommend.InteractionStore.
type Interactions struct {
	inner recommend.InteractionStore
	cb    *gobreaker.CircuitBreaker[any]
}

// NewInteractions wraps inner.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewInteractions(inner recommend.InteractionStore, cfg Config, logger zerolog.Logger) *Interactions {
	return &Interactions{inner: inner, cb: NewCircuitBreaker("interactions", cfg, logger)}
}

// Append implements recommend.InteractionStore.
func (s *Interactions) Append(ctx context.Context, ev recommend.InteractionEvent) error {
	_, err := execute(s.cb, func() (struct{}, error) {
		return struct{}{}, s.inner.Append(ctx, ev)
	})
	return err
}

// Query implements recommend.InteractionStore.
func (s *Interactions) Query(ctx context.Context, userID string, limit int) ([]recommend.InteractionEvent, error) {
	return execute(s.cb, func() ([]recommend.InteractionEvent, error) {
		return s.inner.Query(ctx, userID, limit)
	})
}

// All implements recommend.InteractionStore.
func (s *Interactions) All(ctx context.Context) ([]recommend.InteractionEvent, error) {
	return execute(s.cb, func() ([]recommend.InteractionEvent, error) {
		return s.inner.All(ctx)
	})
}

// State returns the breaker state.
func (s *Interactions) State() gobreaker.State { return s.cb.State() }

// Preferences guards a recommend.PreferenceStore.
type Preferences struct {
	inner recommend.PreferenceStore
	cb    *gobreaker.CircuitBreaker[any]
}

// NewPreferences wraps inner.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPreferences(inner recommend.PreferenceStore, cfg Config, logger zerolog.Logger) *Preferences {
	return &Preferences{inner: inner, cb: NewCircuitBreaker("preferences", cfg, logger)}
}

// Get implements recommend.PreferenceStore.
func (s *Preferences) Get(ctx context.Context, userID string) (recommend.Preferences, error) {
	return execute(s.cb, func() (recommend.Preferences, error) {
		return s.inner.Get(ctx, userID)
	})
}

// Set implements recommend.PreferenceStore.
func (s *Preferences) Set(ctx context.Context, p recommend.Preferences) error {
	_, err := execute(s.cb, func() (struct{}, error) {
		return struct{}{}, s.inner.Set(ctx, p)
	})
	return err
}

// All implements recommend.PreferenceStore.
func (s *Preferences) All(ctx context.Context) ([]recommend.Preferences, error) {
	return execute(s.cb, func() ([]recommend.Preferences, error) {
		return s.inner.All(ctx)
	})
}

// State returns the breaker state.
func (s *Preferences) State() gobreaker.State { return s.cb.State() }

// Feedback guards a recommend.FeedbackStore.
type Feedback struct {
	inner recommend.FeedbackStore
	cb    *gobreaker.CircuitBreaker[any]
}

// NewFeedback wraps inner.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFeedback(inner recommend.FeedbackStore, cfg Config, logger zerolog.Logger) *Feedback {
	return &Feedback{inner: inner, cb: NewCircuitBreaker("feedback", cfg, logger)}
}

// Save implements recommend.FeedbackStore.
func (s *Feedback) Save(ctx context.Context, rec recommend.FeedbackRecord) error {
	_, err := execute(s.cb, func() (struct{}, error) {
		return struct{}{}, s.inner.Save(ctx, rec)
	})
	return err
}

// State returns the breaker state.
func (s *Feedback) State() gobreaker.State { return s.cb.State() }
