// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/recommend/algorithms"
)

// MatrixBuilder turns stated preferences and logged interactions into a
// user x item affinity matrix.
type MatrixBuilder struct {
	interactions InteractionStore
	preferences  PreferenceStore
	config       MatrixConfig
	logger       zerolog.Logger
}

// NewMatrixBuilder creates a MatrixBuilder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMatrixBuilder(interactions InteractionStore, preferences PreferenceStore, cfg MatrixConfig, logger zerolog.Logger) *MatrixBuilder {
	return &MatrixBuilder{
		interactions: interactions,
		preferences:  preferences,
		config:       cfg,
		logger:       logger.With().Str("component", "matrix").Logger(),
	}
}

// MinInteractions returns the configured support threshold.
func (b *MatrixBuilder) MinInteractions() int { return b.config.MinInteractions }

// Build loads every preference document and event and returns the unfiltered
// matrix. Callers apply Filter(MinInteractions()) before factorizing.
func (b *MatrixBuilder) Build(ctx context.Context) (*algorithms.Matrix, error) {
	prefs, err := b.preferences.All(ctx)
	if err != nil {
		metrics.RecordStoreError("preferences", "all")
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	events, err := b.interactions.All(ctx)
	if err != nil {
		metrics.RecordStoreError("interactions", "all")
		return nil, fmt.Errorf("load interactions: %w", err)
	}

	m := BuildMatrix(prefs, events, b.config)
	b.logger.Debug().
		Int("preferences", len(prefs)).
		Int("events", len(events)).
		Int("users", m.Rows()).
		Int("items", m.Cols()).
		Msg("built raw affinity matrix")
	return m, nil
}

// BuildMatrix accumulates affinities. Preferences are applied first and
// assign their weight; events are applied in order and add to it.
//
//nolint:gocritic // cfg is a small value type
func BuildMatrix(prefs []Preferences, events []InteractionEvent, cfg MatrixConfig) *algorithms.Matrix {
	acc := algorithms.NewAccumulator()
	fold := cases.Lower(language.Und)

	for i := range prefs {
		p := &prefs[i]
		if p.UserID == "" {
			continue
		}
		for _, artist := range p.FavoriteArtists {
			if artist != "" {
				acc.Set(p.UserID, artist, cfg.FavoriteArtist)
			}
		}
		for _, genre := range p.FavoriteGenres {
			if genre != "" {
				acc.Set(p.UserID, GenrePrefix+genre, cfg.FavoriteGenre)
			}
		}
	}

	for i := range events {
		ev := &events[i]
		if ev.UserID == "" {
			continue
		}
		switch p := NormalizePayload(ev.Payload).(type) {
		case *ArtistViewPayload:
			if p.ArtistName != "" {
				acc.Add(ev.UserID, p.ArtistName, cfg.ArtistView)
			}
		case *RecommendationClickPayload:
			if p.ArtistName != "" {
				acc.Add(ev.UserID, p.ArtistName, cfg.Engagement)
			}
		case *FeedbackPayload:
			if p.ArtistName != "" && p.Feedback.Positive() {
				acc.Add(ev.UserID, p.ArtistName, cfg.Engagement)
			}
		case *SearchPayload:
			if q := strings.TrimSpace(p.Query); q != "" {
				acc.Add(ev.UserID, SearchPrefix+fold.String(q), cfg.Search)
			}
		}
	}

	return acc.Dense()
}
