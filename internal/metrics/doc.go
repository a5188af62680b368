// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package metrics declares the Prometheus collectors exported by Cadence.
//
// Collectors are registered on the default registry through promauto and are
// served by the metrics HTTP service at /metrics. Callers use the Record*
// helpers rather than touching collectors directly so label values stay
// consistent.
package metrics
