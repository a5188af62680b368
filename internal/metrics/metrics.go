// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Interaction tracking
	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_interactions_recorded_total",
			Help: "Interaction events appended to the interaction store",
		},
		[]string{"action"},
	)

	InteractionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_interactions_rejected_total",
			Help: "Interaction events rejected at the recording boundary",
		},
		[]string{"action", "reason"}, // "invalid", "store"
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_store_errors_total",
			Help: "Failed calls to an external store",
		},
		[]string{"store", "operation"},
	)

	// Model state
	RebuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadence_rebuild_duration_seconds",
			Help:    "Time spent rebuilding a model snapshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"}, // "collaborative", "content"
	)

	RebuildFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_rebuild_failures_total",
			Help: "Model rebuilds that failed",
		},
		[]string{"model"},
	)

	MatrixSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cadence_matrix_size",
			Help: "Dimensions of the filtered affinity matrix",
		},
		[]string{"dimension"}, // "users", "items"
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadence_content_catalog_size",
			Help: "Artists in the current content similarity snapshot",
		},
	)

	// Serving
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadence_recommendation_duration_seconds",
			Help:    "Latency of recommendation operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"}, // "hybrid", "collaborative", "content", "predict"
	)

	EngineFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_engine_failures_total",
			Help: "Engine failures isolated during a recommendation",
		},
		[]string{"engine"},
	)

	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_recommendation_cache_hits_total",
			Help: "Hybrid recommendations served from cache",
		},
	)

	RecommendationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_recommendation_cache_misses_total",
			Help: "Hybrid recommendations computed on a cache miss",
		},
	)

	// Feedback
	FeedbackRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_feedback_total",
			Help: "Recommendation feedback by kind",
		},
		[]string{"feedback"},
	)

	// Resilience
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cadence_circuit_breaker_state",
			Help: "Store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_circuit_breaker_transitions_total",
			Help: "Store circuit breaker state changes",
		},
		[]string{"name", "from", "to"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_events_consumed_total",
			Help: "Messages handled by the analytics consumer",
		},
		[]string{"topic"},
	)
)

// RecordRebuild observes a model rebuild.
func RecordRebuild(model string, duration time.Duration, err error) {
	RebuildDuration.WithLabelValues(model).Observe(duration.Seconds())
	if err != nil {
		RebuildFailures.WithLabelValues(model).Inc()
	}
}

// RecordRecommendation observes the latency of a recommendation operation.
func RecordRecommendation(method string, duration time.Duration) {
	RecommendationDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordStoreError counts a failed store call.
func RecordStoreError(store, operation string) {
	StoreErrors.WithLabelValues(store, operation).Inc()
}

// RecordMatrix publishes the filtered matrix dimensions.
func RecordMatrix(users, items int) {
	MatrixSize.WithLabelValues("users").Set(float64(users))
	MatrixSize.WithLabelValues("items").Set(float64(items))
}
