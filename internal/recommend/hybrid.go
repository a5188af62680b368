// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

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
)

// CollaborativeRecommender scores unseen items for a user.
type CollaborativeRecommender interface {
	Recommend(ctx context.Context, userID string, n int) ([]Scored, error)
}

// Predictor produces genre, language and artist predictions for a user.
type Predictor interface {
	Predict(ctx context.Context, userID string) (Predictions, error)
}

// HybridRequest asks for recommendations over a caller-supplied catalog.
type HybridRequest struct {
	UserID  string
	Catalog []Artist
	Limit   int

	// Language keeps only artists whose language contains, or is contained
	// in, this value. Empty or "all" disables the filter.
	Language string
}

// HybridResult is a ranked list plus the engines that failed while producing it.
type HybridResult struct {
	Items          []Recommendation `json:"recommendations"`
	Degraded       []string         `json:"degraded,omitempty"`
	TotalAvailable int              `json:"total_available"`
}

// Hybrid blends content similarity, collaborative filtering and rule-based
// prediction boosts into one ranked list.
//
// A failing engine is recorded in HybridResult.Degraded and contributes
// nothing; the remaining signals are still blended.
type Hybrid struct {
	content     *ContentEngine
	collab      CollaborativeRecommender
	predictor   Predictor
	preferences PreferenceStore
	config      *Config
	logger      zerolog.Logger
}

// NewHybrid creates a hybrid recommender.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHybrid(content *ContentEngine, collab CollaborativeRecommender, predictor Predictor, prefs PreferenceStore, cfg *Config, logger zerolog.Logger) *Hybrid {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Hybrid{
		content:     content,
		collab:      collab,
		predictor:   predictor,
		preferences: prefs,
		config:      cfg,
		logger:      logger.With().Str("component", "hybrid").Logger(),
	}
}

// Recommend returns up to req.Limit artists from req.Catalog. The returned
// error joins every engine failure; the result is usable even when it is
// non-nil.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (h *Hybrid) Recommend(ctx context.Context, req HybridRequest) (HybridResult, error) {
	start := time.Now()
	defer func() { metrics.RecordRecommendation("hybrid", time.Since(start)) }()

	logger := logging.FromContext(ctx, h.logger)
	catalog := FilterLanguage(DedupeCatalog(req.Catalog), req.Language)
	result := HybridResult{TotalAvailable: len(catalog), Items: []Recommendation{}}
	if len(catalog) == 0 {
		return result, nil
	}

	var errs []error
	fail := func(engine string, err error) {
		result.Degraded = append(result.Degraded, engine)
		errs = append(errs, fmt.Errorf("%s: %w", engine, err))
		metrics.EngineFailures.WithLabelValues(engine).Inc()
		logger.Warn().Err(err).Str("engine", engine).Msg("engine failed; continuing without it")
	}

	// One snapshot per request: concurrent requests for other catalogs may
	// publish theirs while this one is scoring.
	snapshot, err := h.content.For(ctx, catalog)
	if err != nil {
		fail(EngineContent, err)
	}

	prefs, err := h.preferences.Get(ctx, req.UserID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		fail(EnginePreferences, err)
	}
	favorites := make(map[string]struct{}, len(prefs.FavoriteArtists))
	for _, a := range prefs.FavoriteArtists {
		favorites[a] = struct{}{}
	}

	contentScores := make(map[string]float64)
	for _, s := range snapshot.Recommend(prefs.FavoriteArtists, len(catalog)) {
		contentScores[s.Item] = s.Score
	}

	collabScores := make(map[string]float64)
	if collab, err := h.collab.Recommend(ctx, req.UserID, math.MaxInt); err != nil {
		fail(EngineCollaborative, err)
	} else {
		for _, s := range collab {
			if !IsPseudoItem(s.Item) {
				collabScores[s.Item] = s.Score
			}
		}
	}

	predictions, err := h.predictor.Predict(ctx, req.UserID)
	if err != nil {
		fail(EnginePrediction, err)
	}
	genres := toSet(predictions.GenreValues())
	languages := toSet(predictions.LanguageValues())

	w := h.config.Weights
	for i := range catalog {
		a := &catalog[i]
		if _, fav := favorites[a.Name]; fav {
			continue
		}
		if _, fav := favorites[a.ID]; fav {
			continue
		}

		var score float64
		var trace []string

		if sim, ok := contentScores[a.ID]; ok {
			c := sim * w.Content
			score += c
			trace = append(trace, fmt.Sprintf("Content similarity: %.2f", c))
		}

		if cf, ok := lookupCollab(collabScores, a); ok {
			c := cf * w.Collaborative
			score += c
			trace = append(trace, fmt.Sprintf("User similarity: %.2f", c))
		}

		var boost float64
		for _, g := range a.Genres {
			if _, ok := genres[g]; ok {
				boost += w.GenreBoost
			}
		}
		if _, ok := languages[a.Lang()]; ok {
			boost += w.LanguageBoost
		}
		if boost > 0 {
			score += boost
			trace = append(trace, fmt.Sprintf("Prediction boost: %.2f", boost))
		}

		if score <= 0 {
			continue
		}
		result.Items = append(result.Items, Recommendation{
			ArtistID:   a.ID,
			Name:       a.Name,
			Genres:     a.Genres,
			Score:      score,
			Confidence: math.Min(score, 1.0),
			Reason:     strings.Join(trace, "; "),
		})
	}

	sort.SliceStable(result.Items, func(a, b int) bool {
		return result.Items[a].Score > result.Items[b].Score
	})
	if n := h.config.ClampN(req.Limit); len(result.Items) > n {
		result.Items = result.Items[:n]
	}

	logger.Debug().
		Int("catalog", len(catalog)).
		Int("content_matches", len(contentScores)).
		Int("collaborative_matches", len(collabScores)).
		Int("returned", len(result.Items)).
		Strs("degraded", result.Degraded).
		Dur("duration", time.Since(start)).
		Msg("hybrid recommendations computed")

	return result, errors.Join(errs...)
}

// lookupCollab matches collaborative items, which are keyed by artist name
// in the interaction log, against a catalog artist by id then name.
func lookupCollab(scores map[string]float64, a *Artist) (float64, bool) {
	if s, ok := scores[a.ID]; ok {
		return s, true
	}
	s, ok := scores[a.Name]
	return s, ok
}

// DedupeCatalog drops artists whose id was already seen. The first wins.
func DedupeCatalog(catalog []Artist) []Artist {
	seen := make(map[string]struct{}, len(catalog))
	out := make([]Artist, 0, len(catalog))
	for i := range catalog {
		if _, dup := seen[catalog[i].ID]; dup {
			continue
		}
		seen[catalog[i].ID] = struct{}{}
		out = append(out, catalog[i])
	}
	return out
}

// FilterLanguage keeps artists whose language and lang contain one another,
// case-insensitively. Empty or "all" returns catalog unchanged.
func FilterLanguage(catalog []Artist, lang string) []Artist {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == "all" {
		return catalog
	}
	out := make([]Artist, 0, len(catalog))
	for i := range catalog {
		al := strings.ToLower(catalog[i].Lang())
		if strings.Contains(al, lang) || strings.Contains(lang, al) {
			out = append(out, catalog[i])
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
