// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package logging provides the zerolog-based structured logger shared by every
// Cadence component.
//
// Components never reach for the global logger directly. They receive a
// zerolog.Logger through their constructor and derive a child logger tagged
// with their component name:
//
//	logger := logging.WithComponent("behavior")
//	tracker := behavior.NewTracker(store, cfg, logger)
//
// # Configuration
//
// Init applies the [logging] section of the application configuration:
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//
// # Request Correlation
//
// Ctx attaches the request id and user id carried in a context.Context:
//
//	ctx = logging.ContextWithNewRequestID(ctx)
//	logging.Ctx(ctx).Info().Msg("hybrid recommendations served")
//
// # slog Bridge
//
// Suture reports supervisor events through log/slog. NewSlogLogger returns an
// slog.Logger whose records are written by zerolog so that all output shares
// one format.
package logging
