// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/behavior"
	"github.com/tomtom215/cadence/internal/cache"
	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/feedback"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/prediction"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/recommend/reranking"
	"github.com/tomtom215/cadence/internal/validation"
)

// MethodHybrid names the hybrid scorer in responses.
const MethodHybrid = "hybrid_predictive"

var (
	// ErrInvalidRequest is returned for requests missing required fields.
	ErrInvalidRequest = errors.New("invalid request")
)

// Publisher announces served recommendations and stored feedback.
type Publisher interface {
	PublishGenerated(ctx context.Context, ev events.Generated) error
	PublishFeedback(ctx context.Context, rec recommend.FeedbackRecord) error
}

// Stores are the persistence dependencies.
type Stores struct {
	Interactions recommend.InteractionStore
	Preferences  recommend.PreferenceStore
	Feedback     recommend.FeedbackStore
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher announces events on p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock replaces the time source for every component.
func WithClock(clock recommend.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// HybridResponse is a served hybrid list.
type HybridResponse struct {
	UserID string `json:"user_id"`
	recommend.HybridResult
	Method      string `json:"method"`
	Cached      bool   `json:"cached"`
	GeneratedAt string `json:"generated_at"`
}

// Service exposes the recommendation operations.
type Service struct {
	config      *recommend.Config
	preferences recommend.PreferenceStore

	tracker   *behavior.Tracker
	collab    *recommend.CollaborativeEngine
	content   *recommend.ContentEngine
	predictor *prediction.Engine
	hybrid    *recommend.Hybrid
	recorder  *feedback.Recorder
	diversity *reranking.MMR

	cache     *cache.LRU[recommend.HybridResult]
	publisher Publisher
	now       recommend.Clock
	logger    zerolog.Logger
}

// New validates cfg and wires the engines over stores.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(stores Stores, cfg *recommend.Config, logger zerolog.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("recommend config: %w", err)
	}
	if stores.Interactions == nil || stores.Preferences == nil || stores.Feedback == nil {
		return nil, errors.New("service requires interaction, preference and feedback stores")
	}

	s := &Service{
		config:      cfg.Clone(),
		preferences: stores.Preferences,
		now:         time.Now,
		logger:      logger.With().Str("component", "service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tracker = behavior.NewTracker(stores.Interactions, s.config.Behavior, logger, behavior.WithClock(s.now))
	builder := recommend.NewMatrixBuilder(stores.Interactions, stores.Preferences, s.config.Matrix, logger)
	s.collab = recommend.NewCollaborativeEngine(builder, s.config.Factorization, logger)
	s.content = recommend.NewContentEngine(s.config.Content, logger)
	s.predictor = prediction.NewEngine(s.tracker, stores.Preferences, s.collab, s.config.Prediction, logger)
	s.hybrid = recommend.NewHybrid(s.content, s.collab, s.predictor, stores.Preferences, s.config, logger)

	recorderOpts := []feedback.Option{feedback.WithClock(s.now)}
	if s.publisher != nil {
		recorderOpts = append(recorderOpts, feedback.WithPublisher(s.publisher))
	}
	s.recorder = feedback.NewRecorder(stores.Feedback, s.tracker, logger, recorderOpts...)

	if s.config.Diversity.Enabled {
		s.diversity = reranking.NewMMR(s.config.Diversity.Lambda)
	}
	if s.config.Cache.Enabled {
		s.cache = cache.NewLRU[recommend.HybridResult](s.config.Cache.MaxEntries, s.config.Cache.TTL)
		s.cache.SetClock(s.now)
	}
	return s, nil
}

// Config returns a copy of the effective configuration.
func (s *Service) Config() *recommend.Config { return s.config.Clone() }

// TrackInteraction validates and appends one event.
func (s *Service) TrackInteraction(ctx context.Context, userID string, payload recommend.Payload, sessionID string) (recommend.InteractionEvent, error) {
	ev, err := s.tracker.Record(ctx, userID, payload, sessionID)
	if err != nil {
		return ev, err
	}
	s.invalidate(userID)
	return ev, nil
}

// TrackRawInteraction decodes a JSON payload for action and tracks it.
func (s *Service) TrackRawInteraction(ctx context.Context, userID string, action recommend.ActionKind, data []byte, sessionID string) (recommend.InteractionEvent, error) {
	payload, err := recommend.DecodePayload(action, data)
	if err != nil {
		return recommend.InteractionEvent{}, fmt.Errorf("%w: %w", behavior.ErrInvalidEvent, err)
	}
	return s.TrackInteraction(ctx, userID, payload, sessionID)
}

// GetBehaviorSummary aggregates the user's events over the last windowDays.
// Zero or negative windowDays uses the configured default.
func (s *Service) GetBehaviorSummary(ctx context.Context, userID string, windowDays int) (recommend.BehaviorSummary, error) {
	return s.tracker.Summarize(ctx, userID, windowDays)
}

// BehaviorInsights is a summary with its human-readable observations.
type BehaviorInsights struct {
	Summary     recommend.BehaviorSummary `json:"behavior_patterns"`
	Predictions recommend.Predictions     `json:"predictions"`
	Insights    []string                  `json:"insights"`
}

// GetBehaviorInsights returns the summary, predictions and insight lines.
// Prediction failures are joined into the error; the summary is still
// returned.
func (s *Service) GetBehaviorInsights(ctx context.Context, userID string, windowDays int) (BehaviorInsights, error) {
	summary, err := s.tracker.Summarize(ctx, userID, windowDays)
	if err != nil {
		return BehaviorInsights{}, err
	}
	predictions, perr := s.predictor.Predict(ctx, userID)
	return BehaviorInsights{
		Summary:     summary,
		Predictions: predictions,
		Insights:    behavior.Insights(summary),
	}, perr
}

// GetCollaborativeRecommendations returns up to n unseen items for userID.
// The model is trained on first use if no rebuild has happened yet.
func (s *Service) GetCollaborativeRecommendations(ctx context.Context, userID string, n int) ([]recommend.Scored, error) {
	return s.collab.Recommend(ctx, userID, s.config.ClampN(n))
}

// RebuildCollaborative retrains the collaborative model and drops every
// cached hybrid result.
func (s *Service) RebuildCollaborative(ctx context.Context) (*recommend.Factors, error) {
	f, err := s.collab.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Clear()
	}
	return f, nil
}

// BuildContentFeatures vectorizes catalog for content recommendations.
func (s *Service) BuildContentFeatures(ctx context.Context, catalog []recommend.Artist) error {
	return s.content.Build(ctx, recommend.DedupeCatalog(catalog))
}

// GetContentRecommendations returns up to n artists similar to liked, which
// may hold artist ids or names. Empty until BuildContentFeatures has run.
func (s *Service) GetContentRecommendations(liked []string, n int) []recommend.Scored {
	return s.content.Recommend(liked, s.config.ClampN(n))
}

// PredictUserPreferences predicts genres, languages and artists for userID.
func (s *Service) PredictUserPreferences(ctx context.Context, userID string) (recommend.Predictions, error) {
	return s.predictor.Predict(ctx, userID)
}

// GetHybridRecommendations blends every engine over req.Catalog. A non-nil
// error with a usable response means some engines failed; see
// HybridResponse.Degraded.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) GetHybridRecommendations(ctx context.Context, req recommend.HybridRequest, sessionID string) (HybridResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return HybridResponse{}, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	logger := logging.FromContext(ctx, s.logger)
	req.Limit = s.config.ClampN(req.Limit)

	resp := HybridResponse{UserID: req.UserID, Method: MethodHybrid}
	key := s.cacheKey(&req)

	var err error
	if cached, ok := s.lookup(key); ok {
		resp.HybridResult = cached
		resp.Cached = true
	} else {
		resp.HybridResult, err = s.hybrid.Recommend(ctx, req)
		if s.diversity != nil {
			resp.Items = s.diversity.Rerank(resp.Items, len(resp.Items))
		}
		if err == nil && s.cache != nil {
			s.cache.Add(key, req.UserID, cloneResult(resp.HybridResult))
		}
	}
	resp.GeneratedAt = recommend.FormatTimestamp(s.now())

	generated := &recommend.RecommendationsGeneratedPayload{
		Method:         "hybrid",
		Count:          len(resp.Items),
		TotalAvailable: resp.TotalAvailable,
		LanguageFilter: req.Language,
	}
	if _, terr := s.tracker.Record(ctx, req.UserID, generated, sessionID); terr != nil {
		logger.Warn().Err(terr).Msg("failed to track generated recommendations")
	}
	s.announce(ctx, &resp, req.Language)

	return resp, err
}

func (s *Service) lookup(key string) (recommend.HybridResult, bool) {
	if s.cache == nil {
		return recommend.HybridResult{}, false
	}
	r, ok := s.cache.Get(key)
	if !ok {
		metrics.RecommendationCacheMisses.Inc()
		return recommend.HybridResult{}, false
	}
	metrics.RecommendationCacheHits.Inc()
	return cloneResult(r), true
}

func (s *Service) announce(ctx context.Context, resp *HybridResponse, language string) {
	if s.publisher == nil {
		return
	}
	ids := make([]string, len(resp.Items))
	for i := range resp.Items {
		ids[i] = resp.Items[i].ArtistID
	}
	ev := events.Generated{
		UserID:         resp.UserID,
		Method:         resp.Method,
		Count:          len(resp.Items),
		TotalAvailable: resp.TotalAvailable,
		LanguageFilter: language,
		Degraded:       resp.Degraded,
		ArtistIDs:      ids,
		Cached:         resp.Cached,
		Timestamp:      resp.GeneratedAt,
	}
	if err := s.publisher.PublishGenerated(ctx, ev); err != nil {
		logging.FromContext(ctx, s.logger).Warn().Err(err).Msg("failed to publish generated recommendations")
	}
}

func (s *Service) cacheKey(req *recommend.HybridRequest) string {
	fp := recommend.Fingerprint(recommend.DedupeCatalog(req.Catalog))
	lang := strings.ToLower(strings.TrimSpace(req.Language))
	return req.UserID + "|" + strconv.FormatUint(fp, 16) + "|" + strconv.Itoa(req.Limit) + "|" + lang
}

func cloneResult(r recommend.HybridResult) recommend.HybridResult {
	r.Items = append([]recommend.Recommendation(nil), r.Items...)
	r.Degraded = append([]string(nil), r.Degraded...)
	return r
}

// RecordFeedback stores feedback and drops the user's cached results.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func (s *Service) RecordFeedback(ctx context.Context, in feedback.Input) (recommend.FeedbackRecord, error) {
	rec, err := s.recorder.Record(ctx, in)
	if err != nil {
		return rec, err
	}
	s.invalidate(in.UserID)
	return rec, nil
}

// GetPreferences returns the stored preferences, or ErrNotFound.
func (s *Service) GetPreferences(ctx context.Context, userID string) (recommend.Preferences, error) {
	return s.preferences.Get(ctx, userID)
}

// UpdatePreferences validates update, merges it into the stored document
// (creating one if needed) and drops the user's cached results.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, update recommend.PreferencesUpdate) (recommend.Preferences, error) {
	if strings.TrimSpace(userID) == "" {
		return recommend.Preferences{}, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if err := validation.Struct(update); err != nil {
		return recommend.Preferences{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	current, err := s.preferences.Get(ctx, userID)
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		current = recommend.Preferences{UserID: userID}
	case err != nil:
		metrics.RecordStoreError("preferences", "get")
		return recommend.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	next := update.Apply(current, s.now())
	if err := s.preferences.Set(ctx, next); err != nil {
		metrics.RecordStoreError("preferences", "set")
		return recommend.Preferences{}, fmt.Errorf("store preferences: %w", err)
	}
	s.invalidate(userID)

	logging.FromContext(ctx, s.logger).Info().
		Str("user_id", userID).
		Int("favorite_artists", len(next.FavoriteArtists)).
		Int("favorite_genres", len(next.FavoriteGenres)).
		Msg("preferences updated")
	return next, nil
}

// CacheStats reports hybrid cache counters. All zero when caching is off.
func (s *Service) CacheStats() (hits, misses int64, size int) {
	if s.cache == nil {
		return 0, 0, 0
	}
	return s.cache.Stats()
}

// CleanupCache evicts expired hybrid entries and returns how many.
func (s *Service) CleanupCache() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.CleanupExpired()
}

func (s *Service) invalidate(userID string) {
	if s.cache == nil {
		return
	}
	if n := s.cache.RemoveGroup(userID); n > 0 {
		s.logger.Debug().Str("user_id", userID).Int("entries", n).Msg("invalidated cached recommendations")
	}
}
