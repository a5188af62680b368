// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package main runs the Cadence recommendation worker.

The worker shares the interaction, preference and feedback collections with
the application that records them, keeps the collaborative model fresh, and
exposes operational endpoints. Recommendations themselves are served by
embedding internal/service.

# Application Architecture

	cadence
	├── model-layer
	│   └── rebuild-service   NMF retrain on startup and every interval,
	│                         hybrid cache cleanup
	├── messaging-layer
	│   └── event-router      watermill router feeding the analytics consumer
	│                         (CADENCE_EVENTS_ENABLED)
	└── ops-layer
	    └── ops-http-server   /metrics, /stats, /healthz (CADENCE_METRICS_ENABLED)

Initialization order:

 1. Configuration: koanf v2 from defaults, config.yaml and CADENCE_* variables
 2. Logging: zerolog, JSON or console
 3. Store: memory, or MongoDB wrapped in circuit breakers
 4. Events: in-process gochannel bus, router and analytics consumer
 5. Service: behavior tracker, engines, feedback recorder and hybrid cache
 6. Supervisor tree: suture v4

# Signal Handling

SIGINT and SIGTERM cancel the root context. Each service gets
CADENCE_SUPERVISOR_SHUTDOWN_TIMEOUT to stop, then the store and the bus are
closed. Services that miss the timeout are logged by name.

# Example Usage

Development, in-memory store:

	export CADENCE_LOG_FORMAT=console
	export CADENCE_LOG_LEVEL=debug
	./cadence

Against MongoDB:

	export CADENCE_STORE_BACKEND=mongo
	export CADENCE_MONGO_URI=mongodb://mongo:27017
	export CADENCE_MONGO_DATABASE=music
	export CADENCE_REBUILD_INTERVAL=30m
	./cadence
*/
package main
