// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/store/memory"
	"github.com/tomtom215/cadence/internal/store/mongostore"
	"github.com/tomtom215/cadence/internal/store/resilient"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Config selects and configures the persistence backend.
type Config struct {
	// Backend is memory or mongo. Default: memory
	Backend string `koanf:"backend"`

	Mongo mongostore.Config `koanf:"mongo"`

	// BreakerEnabled wraps a remote backend in circuit breakers.
	// Default: true
	BreakerEnabled bool             `koanf:"breaker_enabled"`
	Breaker        resilient.Config `koanf:"breaker"`
}

// DefaultConfig returns the in-memory backend with breakers enabled.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendMemory,
		Mongo:          mongostore.DefaultConfig(),
		BreakerEnabled: true,
		Breaker:        resilient.DefaultConfig(),
	}
}

// Stores is the set of stores the service runs on.
type Stores struct {
	Interactions recommend.InteractionStore
	Preferences  recommend.PreferenceStore
	Feedback     recommend.FeedbackStore

	ping  func(context.Context) error
	close func(context.Context) error
}

// Ping checks the backend connection. The memory backend is always up.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection, if any.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open builds the configured backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Stores, error) {
	logger = logger.With().Str("component", "store").Logger()

	switch cfg.Backend {
	case BackendMemory, "":
		logger.Info().Msg("using in-memory store; data is lost on restart")
		return &Stores{
			Interactions: memory.NewInteractions(),
			Preferences:  memory.NewPreferences(),
			Feedback:     memory.NewFeedback(),
		}, nil

	case BackendMongo:
		db, err := mongostore.Connect(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		s := &Stores{
			Interactions: db.Interactions(),
			Preferences:  db.Preferences(),
			Feedback:     db.Feedback(),
			ping:         db.Ping,
			close:        db.Close,
		}
		if cfg.BreakerEnabled {
			s.Interactions = resilient.NewInteractions(s.Interactions, cfg.Breaker, logger)
			s.Preferences = resilient.NewPreferences(s.Preferences, cfg.Breaker, logger)
			s.Feedback = resilient.NewFeedback(s.Feedback, cfg.Breaker, logger)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
