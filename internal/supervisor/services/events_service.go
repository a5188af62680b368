// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// EventRouter matches the events.Router lifecycle.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the message router under supervision.
//
// A router cannot be run twice, so an unexpected stop is reported with
// suture.ErrDoNotRestart and the messaging layer drops the service.
// Recommendations keep working without analytics.
type EventRouterService struct {
	router EventRouter
	logger zerolog.Logger
	name   string
}

// NewEventRouterService creates a new event router service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventRouterService(router EventRouter, logger zerolog.Logger) *EventRouterService {
	return &EventRouterService{
		router: router,
		logger: logger.With().Str("service", "events").Logger(),
		name:   "event-router",
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	s.logger.Info().Msg("event router starting")
	err := s.router.Run(ctx)
	if cerr := s.router.Close(); cerr != nil {
		s.logger.Warn().Err(cerr).Msg("event router close failed")
	}

	if ctx.Err() != nil {
		s.logger.Info().Msg("event router stopped")
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("router stopped unexpectedly")
	}
	s.logger.Error().Err(err).Msg("event router stopped; analytics disabled until restart")
	return fmt.Errorf("event router: %w: %w", err, suture.ErrDoNotRestart)
}

// String implements fmt.Stringer for logging.
func (s *EventRouterService) String() string {
	return s.name
}
