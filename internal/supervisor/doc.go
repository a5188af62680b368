// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package supervisor runs Cadence's long-lived background work under suture v4.

Services are grouped into three child supervisors so a failure in one group
never backs off another:

	cadence
	├── model-layer      services.RebuildService
	├── messaging-layer  services.EventRouterService (when events are enabled)
	└── ops-layer        services.HTTPServerService (when metrics are enabled)

Supervisor events (start, failure, backoff, restart) are logged through the
sutureslog adapter. Pass logging.NewSlogLogger to route them into zerolog.

# Usage

	tree := supervisor.NewTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{})
	tree.AddModelService(services.NewRebuildService(svc, rebuildCfg, logger))
	tree.AddOpsService(services.NewHTTPServerService(server, 10*time.Second, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logger.Error().Err(err).Msg("supervisor stopped")
	}

A service should return ctx.Err() on cancellation. Any other return,
including nil, is treated as a failure and the service is restarted.
*/
package supervisor
