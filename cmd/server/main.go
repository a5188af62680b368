// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/ops"
	"github.com/tomtom215/cadence/internal/service"
	"github.com/tomtom215/cadence/internal/store"
	"github.com/tomtom215/cadence/internal/supervisor"
	"github.com/tomtom215/cadence/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.ToLogging())

	if err := run(cfg, logging.Logger()); err != nil {
		logging.Error().Err(err).Msg("Cadence stopped with error")
		os.Exit(1)
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("store", cfg.Store.Backend).
		Bool("events", cfg.Events.Enabled).
		Bool("rebuild", cfg.Rebuild.Enabled).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("Starting Cadence")

	stores, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("Error closing store")
		}
	}()

	tree := supervisor.NewTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})

	var opts []service.Option
	var analytics *events.Analytics
	if cfg.Events.Enabled {
		bus, router, a, err := initEvents(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := bus.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing event bus")
			}
		}()
		analytics = a
		opts = append(opts, service.WithPublisher(events.NewPublisher(bus.Publisher(), logger)))
		tree.AddMessagingService(services.NewEventRouterService(router, logger))
	}

	svc, err := service.New(service.Stores{
		Interactions: stores.Interactions,
		Preferences:  stores.Preferences,
		Feedback:     stores.Feedback,
	}, &cfg.Recommend, logger, opts...)
	if err != nil {
		return fmt.Errorf("create recommendation service: %w", err)
	}

	if cfg.Rebuild.Enabled {
		tree.AddModelService(services.NewRebuildService(svc, services.RebuildServiceConfig{
			OnStartup:       cfg.Rebuild.OnStartup,
			Interval:        cfg.Rebuild.Interval,
			Timeout:         cfg.Recommend.Factorization.Timeout,
			CleanupInterval: cfg.Rebuild.CacheCleanupInterval,
		}, logger))
	}

	if cfg.Metrics.Enabled {
		tree.AddOpsService(services.NewHTTPServerService(
			newOpsServer(cfg, svc, analytics, stores, logger),
			cfg.Metrics.ShutdownTimeout,
			logger,
		))
	}

	logger.Info().Msg("Starting supervisor tree")
	err = <-tree.ServeBackground(ctx)

	if unstopped, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(unstopped) > 0 {
		for _, u := range unstopped {
			logger.Warn().Str("service", u.Name).Msg("Service did not stop within timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	logger.Info().Msg("Cadence stopped")
	return nil
}

// initEvents builds the bus, the router and the analytics consumer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEvents(cfg *config.Config, logger zerolog.Logger) (*events.Bus, *events.Router, *events.Analytics, error) {
	bus := events.NewBus(cfg.Events.Bus, logger)
	router, err := events.NewRouter(cfg.Events.Router, events.NewLoggerAdapter(logger.With().Str("component", "event_router").Logger()))
	if err != nil {
		_ = bus.Close()
		return nil, nil, nil, fmt.Errorf("create event router: %w", err)
	}
	analytics := events.NewAnalytics(logger)
	analytics.Register(router, bus.Subscriber())
	return bus, router, analytics, nil
}

// newOpsServer builds the /metrics, /stats and /healthz server. analytics
// may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newOpsServer(cfg *config.Config, svc *service.Service, analytics *events.Analytics, stores *store.Stores, logger zerolog.Logger) *http.Server {
	var stats ops.StatsSource
	if analytics != nil {
		stats = analytics
	}
	h := ops.NewHandler(ops.Config{
		RateLimitRequests: cfg.Metrics.RateLimitRequests,
		RateLimitWindow:   cfg.Metrics.RateLimitWindow,
		CORSOrigins:       cfg.Metrics.CORSOrigins,
	}, stats, svc, logger)
	h.AddHealthCheck("store", stores.Ping)

	return &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}
