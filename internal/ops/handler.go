// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/logging"
)

// healthTimeout bounds a single /healthz probe.
const healthTimeout = 2 * time.Second

// StatsSource exposes aggregated recommendation analytics.
type StatsSource interface {
	Stats() events.Stats
}

// CacheStatsSource exposes hybrid cache counters.
type CacheStatsSource interface {
	CacheStats() (hits, misses int64, size int)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config configures the ops router.
type Config struct {
	// RateLimitRequests per RateLimitWindow per client IP on /stats and
	// /healthz. 0 disables rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// CORSOrigins lets browser dashboards read /stats and /healthz.
	// Empty sends no CORS headers.
	CORSOrigins []string
}

// Handler serves /metrics, /stats and /healthz.
type Handler struct {
	config Config
	stats  StatsSource
	cache  CacheStatsSource
	checks map[string]HealthCheck
	logger zerolog.Logger
}

// CacheStats is the /stats view of the hybrid cache.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// StatsResponse is the /stats body. Analytics is nil when event
// consumption is disabled.
type StatsResponse struct {
	Analytics *events.Stats `json:"analytics,omitempty"`
	Cache     CacheStats    `json:"cache"`
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewHandler creates an ops handler. stats may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(cfg Config, stats StatsSource, cache CacheStatsSource, logger zerolog.Logger) *Handler {
	return &Handler{
		config: cfg,
		stats:  stats,
		cache:  cache,
		checks: make(map[string]HealthCheck),
		logger: logger.With().Str("component", "ops").Logger(),
	}
}

// AddHealthCheck registers a named dependency probe for /healthz.
// Call before Router.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// Router builds the chi router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if len(h.config.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: h.config.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}
		if h.config.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(h.config.RateLimitRequests, h.config.RateLimitWindow))
		}
		r.Get("/stats", h.Stats)
		r.Get("/healthz", h.Health)
	})
	return r
}

// Stats writes analytics and cache counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var resp StatsResponse
	if h.stats != nil {
		s := h.stats.Stats()
		resp.Analytics = &s
	}
	if h.cache != nil {
		resp.Cache.Hits, resp.Cache.Misses, resp.Cache.Size = h.cache.CacheStats()
	}
	h.respondJSON(w, r, http.StatusOK, resp)
}

// Health runs every registered check. Any failure answers 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	h.respondJSON(w, r, status, resp)
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(v)
	if err != nil {
		logging.FromContext(r.Context(), h.logger).Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context(), h.logger).Error().Err(err).Msg("failed to write JSON response")
	}
}

// requestLogger carries chi's request id into the logging context and logs
// each request at debug level.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		if id := chimiddleware.GetReqID(ctx); id != "" {
			ctx = logging.ContextWithRequestID(ctx, id)
		}
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.FromContext(ctx, h.logger).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("ops request")
	})
}
