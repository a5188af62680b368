// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package ops serves the operational HTTP endpoint: Prometheus metrics,
// recommendation analytics and dependency health.
//
// Routes:
//
//	GET /metrics  Prometheus exposition
//	GET /stats    analytics counters and hybrid cache stats (JSON)
//	GET /healthz  registered health checks; 503 when any fails
//
// /stats and /healthz are rate limited per client IP. /metrics is not, so
// scrapers behind a shared address are never throttled.
package ops
