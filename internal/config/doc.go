// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package config loads the Cadence server configuration.

# Configuration Sources

Koanf layers three sources, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, then config.yaml, config.yml,
    /etc/cadence/config.yaml
 3. CADENCE_* environment variables, through an explicit mapping so stray
    variables never leak into the configuration

# Sections

  - logging: level, format, caller
  - recommend: engine weights, matrix weights, factorization, content,
    behavior window, prediction constants, limits, hybrid cache
  - store: backend (memory or mongo), mongo connection, circuit breakers
  - events: in-process message bus and consumer router
  - rebuild: periodic collaborative model rebuild
  - metrics: Prometheus and analytics HTTP endpoint
  - supervisor: suture failure handling

# Environment Variables

A representative subset:

  - CADENCE_LOG_LEVEL, CADENCE_LOG_FORMAT
  - CADENCE_STORE_BACKEND, CADENCE_MONGO_URI, CADENCE_MONGO_DATABASE
  - CADENCE_BREAKER_ENABLED, CADENCE_BREAKER_TIMEOUT
  - CADENCE_MIN_INTERACTIONS, CADENCE_NMF_COMPONENTS, CADENCE_NMF_MAX_ITER
  - CADENCE_WEIGHT_CONTENT, CADENCE_WEIGHT_COLLABORATIVE
  - CADENCE_DEFAULT_GENRES (comma separated)
  - CADENCE_CACHE_ENABLED, CADENCE_CACHE_TTL
  - CADENCE_DIVERSITY_ENABLED, CADENCE_DIVERSITY_LAMBDA
  - CADENCE_REBUILD_INTERVAL, CADENCE_REBUILD_ON_STARTUP
  - CADENCE_METRICS_ADDR
  - CADENCE_METRICS_RATE_LIMIT_REQUESTS, CADENCE_METRICS_RATE_LIMIT_WINDOW
  - CADENCE_METRICS_CORS_ORIGINS (comma separated)

See envMappings in koanf.go for the full list.

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(cfg.Logging.ToLogging())
*/
package config
