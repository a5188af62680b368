// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package prediction infers genres, languages and artists a user is likely
// to enjoy from their behavior summary, stated preferences and the
// collaborative model.
//
// Genre predictions follow a cascade. Search terms that mention a known
// genre come first. Only when they yield nothing does the engine fall back
// to viewed genres, then stated favorites, then a fixed popular default, so
// every user receives at least one genre.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/recommend"
)

// Genres is the curated vocabulary search terms and histograms are matched
// against, in matching order.
var Genres = []string{
	"pop", "rock", "hip hop", "electronic", "jazz", "classical", "country",
	"r&b", "indie", "alternative", "folk", "metal", "blues", "reggae", "latin",
}

// Reasoning notes attached to a prediction bundle.
const (
	NoteHighDiscovery = "User shows high discovery rate - likely to try new genres"
	NoteHighActivity  = "User is highly active - provide diverse recommendations"
)

// BehaviorSource summarizes recent user behavior.
type BehaviorSource interface {
	Summarize(ctx context.Context, userID string, windowDays int) (recommend.BehaviorSummary, error)
}

// Engine produces prediction bundles. It implements recommend.Predictor.
type Engine struct {
	behavior    BehaviorSource
	preferences recommend.PreferenceStore
	collab      recommend.CollaborativeRecommender
	config      recommend.PredictionConfig
	logger      zerolog.Logger

	vocabulary map[string]struct{}
}

var _ recommend.Predictor = (*Engine)(nil)

// NewEngine creates an Engine. collab may be nil, in which case no artist
// predictions are made.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(behavior BehaviorSource, prefs recommend.PreferenceStore, collab recommend.CollaborativeRecommender, cfg recommend.PredictionConfig, logger zerolog.Logger) *Engine {
	vocab := make(map[string]struct{}, len(Genres))
	for _, g := range Genres {
		vocab[g] = struct{}{}
	}
	return &Engine{
		behavior:    behavior,
		preferences: prefs,
		collab:      collab,
		config:      cfg,
		logger:      logger.With().Str("component", "prediction").Logger(),
		vocabulary:  vocab,
	}
}

// Predict builds the prediction bundle for userID.
//
// A preference store failure aborts with an empty bundle. Behavior and
// collaborative failures are joined into the returned error while the
// remaining signals still produce predictions.
func (e *Engine) Predict(ctx context.Context, userID string) (recommend.Predictions, error) {
	start := time.Now()
	defer func() { metrics.RecordRecommendation("prediction", time.Since(start)) }()
	logger := logging.FromContext(ctx, e.logger)

	out := recommend.Predictions{
		Genres:    []recommend.Prediction{},
		Languages: []recommend.Prediction{},
		Artists:   []recommend.Prediction{},
		Reasoning: []string{},
	}

	prefs, err := e.preferences.Get(ctx, userID)
	if err != nil && !errors.Is(err, recommend.ErrNotFound) {
		metrics.RecordStoreError("preferences", "get")
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to load preferences")
		return out, fmt.Errorf("load preferences: %w", err)
	}

	var errs []error
	summary, err := e.behavior.Summarize(ctx, userID, 0)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("behavior unavailable; predicting without it")
		errs = append(errs, fmt.Errorf("behavior: %w", err))
		summary = recommend.NewBehaviorSummary(0)
	}

	out.Genres = e.predictGenres(&summary, &prefs)
	out.Languages = e.predictLanguages(summary.Languages)
	out.Reasoning = e.reasoning(&summary)

	if e.collab != nil {
		artists, err := e.predictArtists(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("collaborative predictions unavailable")
			errs = append(errs, fmt.Errorf("collaborative: %w", err))
		}
		out.Artists = artists
	}

	logger.Debug().
		Str("user_id", userID).
		Int("genres", len(out.Genres)).
		Int("languages", len(out.Languages)).
		Int("artists", len(out.Artists)).
		Msg("predictions computed")
	return out, errors.Join(errs...)
}

func (e *Engine) predictGenres(s *recommend.BehaviorSummary, prefs *recommend.Preferences) []recommend.Prediction {
	if preds := e.fromSearches(s.SearchTerms, prefs.FavoriteGenres); len(preds) > 0 {
		return preds
	}
	if preds := e.fromHistogram(s.Genres); len(preds) > 0 {
		return preds
	}
	if preds := e.fromStated(prefs.FavoriteGenres); len(preds) > 0 {
		return preds
	}
	return e.defaults()
}

// fromSearches maps frequent search terms to the first vocabulary genre they
// mention. Terms are visited by frequency, then alphabetically.
func (e *Engine) fromSearches(terms map[string]int, favorites []string) []recommend.Prediction {
	fav := make(map[string]struct{}, len(favorites))
	for _, g := range favorites {
		fav[strings.ToLower(g)] = struct{}{}
	}

	var out []recommend.Prediction
	predicted := make(map[string]struct{})
	for _, kv := range ranked(terms) {
		if kv.count < e.config.MinSearchFrequency {
			continue
		}
		term := strings.ToLower(kv.key)
		for _, g := range Genres {
			if !strings.Contains(term, g) {
				continue
			}
			if _, done := predicted[g]; done {
				continue
			}
			if _, known := fav[g]; known {
				continue
			}
			predicted[g] = struct{}{}
			out = append(out, recommend.Prediction{
				Value:      g,
				Confidence: math.Min(float64(kv.count)/e.config.SearchDivisor, e.config.SearchCap),
				Source:     recommend.SourceSearchHistory,
				Reason:     "Based on search patterns for " + kv.key,
			})
			break
		}
	}
	return out
}

func (e *Engine) fromHistogram(genres map[string]int) []recommend.Prediction {
	var out []recommend.Prediction
	for _, kv := range ranked(genres) {
		if len(out) >= e.config.BehaviorTop {
			break
		}
		if _, ok := e.vocabulary[kv.key]; !ok {
			continue
		}
		out = append(out, recommend.Prediction{
			Value:      kv.key,
			Confidence: math.Min(float64(kv.count)/e.config.BehaviorDivisor, e.config.BehaviorCap),
			Source:     recommend.SourceListeningBehavior,
			Reason:     fmt.Sprintf("Based on your interaction with %s music", kv.key),
		})
	}
	return out
}

func (e *Engine) fromStated(favorites []string) []recommend.Prediction {
	var out []recommend.Prediction
	for _, g := range favorites {
		if len(out) >= e.config.StatedTop {
			break
		}
		out = append(out, recommend.Prediction{
			Value:      g,
			Confidence: e.config.StatedConfidence,
			Source:     recommend.SourceStatedPreferences,
			Reason:     "Based on your current preferences",
		})
	}
	return out
}

func (e *Engine) defaults() []recommend.Prediction {
	out := make([]recommend.Prediction, 0, len(e.config.DefaultGenres))
	for _, g := range e.config.DefaultGenres {
		out = append(out, recommend.Prediction{
			Value:      g,
			Confidence: e.config.DefaultConfidence,
			Source:     recommend.SourceDefault,
			Reason:     "Popular genre suggestion",
		})
	}
	return out
}

func (e *Engine) predictLanguages(languages map[string]int) []recommend.Prediction {
	out := []recommend.Prediction{}
	for _, kv := range ranked(languages) {
		if kv.count < e.config.MinLanguageFrequency {
			break
		}
		out = append(out, recommend.Prediction{
			Value:      kv.key,
			Confidence: math.Min(float64(kv.count)/e.config.LanguageDivisor, e.config.LanguageCap),
			Source:     recommend.SourceLanguageBehavior,
			Reason:     fmt.Sprintf("Viewed %d %s artists", kv.count, kv.key),
		})
	}
	return out
}

func (e *Engine) reasoning(s *recommend.BehaviorSummary) []string {
	out := []string{}
	if s.DiscoveryRate > e.config.HighDiscoveryRate {
		out = append(out, NoteHighDiscovery)
	}
	if s.TotalInteractions > e.config.HighActivity {
		out = append(out, NoteHighActivity)
	}
	return out
}

func (e *Engine) predictArtists(ctx context.Context, userID string) ([]recommend.Prediction, error) {
	out := []recommend.Prediction{}
	candidates, err := e.collab.Recommend(ctx, userID, e.config.ArtistCandidates)
	if err != nil {
		return out, err
	}
	for _, c := range candidates {
		if c.Score <= e.config.MinArtistScore {
			continue
		}
		out = append(out, recommend.Prediction{
			Value:      c.Item,
			Confidence: math.Min(c.Score, 1),
			Source:     recommend.SourceCollaborative,
			Reason:     "Similar users also liked this artist",
		})
	}
	return out, nil
}

type keyCount struct {
	key   string
	count int
}

// ranked orders a histogram by count descending, then key ascending.
func ranked(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}
