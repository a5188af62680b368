// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package services provides suture.Service wrappers for Cadence components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern and implements fmt.Stringer so supervisor events name it.

# Available Services

Rebuild (RebuildService):
  - Retrains the collaborative model on startup and on a fixed interval
  - Evicts expired hybrid cache entries on its own interval
  - Failed rebuilds are logged and retried on schedule, never returned

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Serves the ops handler: /metrics, /stats, /healthz

Event Router (EventRouterService):
  - Runs the watermill router that feeds the analytics consumer
  - Closes the router when the context ends
  - An unexpected stop returns suture.ErrDoNotRestart; routers are single-use

# Usage

	tree.AddModelService(services.NewRebuildService(svc, rebuildCfg, logger))
	tree.AddMessagingService(services.NewEventRouterService(router, logger))
	tree.AddOpsService(services.NewHTTPServerService(server, 10*time.Second, logger))
*/
package services
