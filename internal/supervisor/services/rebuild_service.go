// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/recommend"
)

// ModelRebuilder retrains the collaborative model and maintains the hybrid
// cache. Satisfied by *service.Service.
type ModelRebuilder interface {
	RebuildCollaborative(ctx context.Context) (*recommend.Factors, error)
	CleanupCache() int
}

// RebuildServiceConfig holds configuration for the rebuild service.
type RebuildServiceConfig struct {
	// OnStartup rebuilds as soon as the service starts.
	OnStartup bool

	// Interval between rebuilds. Default: 1h
	Interval time.Duration

	// Timeout bounds one rebuild. Default: 30m
	Timeout time.Duration

	// CleanupInterval evicts expired cache entries. Zero disables it.
	CleanupInterval time.Duration
}

// RebuildService keeps the collaborative model fresh.
type RebuildService struct {
	rebuilder ModelRebuilder
	config    RebuildServiceConfig
	logger    zerolog.Logger
	name      string
}

// NewRebuildService creates a rebuild service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildService(rebuilder ModelRebuilder, cfg RebuildServiceConfig, logger zerolog.Logger) *RebuildService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &RebuildService{
		rebuilder: rebuilder,
		config:    cfg,
		logger:    logger.With().Str("service", "rebuild").Logger(),
		name:      "rebuild-service",
	}
}

// Serve implements suture.Service. Rebuild failures are logged and retried
// on the next tick; only context cancellation ends the loop.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Dur("cleanup_interval", s.config.CleanupInterval).
		Msg("rebuild service starting")

	if s.config.OnStartup {
		s.rebuild(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	var cleanup <-chan time.Time
	if s.config.CleanupInterval > 0 {
		ct := time.NewTicker(s.config.CleanupInterval)
		defer ct.Stop()
		cleanup = ct.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.rebuild(ctx)

		case <-cleanup:
			if n := s.rebuilder.CleanupCache(); n > 0 {
				s.logger.Debug().Int("evicted", n).Msg("expired cache entries evicted")
			}
		}
	}
}

func (s *RebuildService) rebuild(ctx context.Context) {
	rebuildCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	f, err := s.rebuilder.RebuildCollaborative(rebuildCtx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("collaborative rebuild failed; retrying on schedule")
		}
		return
	}

	ev := s.logger.Info().Dur("duration", time.Since(start))
	if f != nil && f.Matrix != nil {
		ev = ev.Int("users", f.Matrix.Rows()).Int("items", f.Matrix.Cols()).Bool("trained", f.Trained())
	}
	ev.Msg("collaborative model rebuilt")
}

// String returns the service name for logging.
func (s *RebuildService) String() string {
	return s.name
}
