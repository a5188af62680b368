// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/recommend/algorithms"
)

// ErrEmptyVocabulary is returned when no catalog artist yields a feature term.
var ErrEmptyVocabulary = algorithms.ErrEmptyVocabulary

// PopularityTier buckets a 0-100 popularity score.
func PopularityTier(popularity int) string {
	switch {
	case popularity >= 80:
		return "tier_popular"
	case popularity >= 60:
		return "tier_mainstream"
	case popularity >= 40:
		return "tier_emerging"
	default:
		return "tier_niche"
	}
}

// FollowerTier buckets a follower count.
func FollowerTier(followers int64) string {
	switch {
	case followers >= 1_000_000:
		return "followers_massive"
	case followers >= 100_000:
		return "followers_large"
	case followers >= 10_000:
		return "followers_medium"
	default:
		return "followers_small"
	}
}

// FeatureDocument returns the token document describing a.
func FeatureDocument(a *Artist) string {
	tokens := make([]string, 0, len(a.Genres)+3)
	tokens = append(tokens, a.Genres...)
	tokens = append(tokens,
		"language_"+a.Lang(),
		PopularityTier(a.Popularity),
		FollowerTier(a.Followers),
	)
	return strings.Join(tokens, " ")
}

// Fingerprint identifies a catalog snapshot by the fields that feed the
// feature documents.
func Fingerprint(catalog []Artist) uint64 {
	d := xxhash.New()
	for i := range catalog {
		a := &catalog[i]
		_, _ = d.WriteString(a.ID)
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(a.Name)
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(FeatureDocument(a))
		_, _ = d.WriteString("\x1e")
	}
	return d.Sum64()
}

// ContentSnapshot is an immutable vectorized catalog with its pairwise
// similarity matrix.
type ContentSnapshot struct {
	IDs         []string
	Names       []string
	Similarity  [][]float64
	Vocabulary  int
	Fingerprint uint64
	BuiltAt     time.Time

	index map[string]int
}

// Len returns the number of artists in the snapshot.
func (s *ContentSnapshot) Len() int { return len(s.IDs) }

// lookup resolves an artist id, or failing that a name, to its row.
func (s *ContentSnapshot) lookup(key string) (int, bool) {
	if i, ok := s.index["id:"+key]; ok {
		return i, true
	}
	i, ok := s.index["name:"+key]
	return i, ok
}

// ContentEngine recommends artists whose metadata resembles liked artists.
//
// Build must be called before Recommend. Recommend never builds implicitly
// and returns nothing until a snapshot exists.
type ContentEngine struct {
	config ContentConfig
	logger zerolog.Logger

	snapshot atomic.Pointer[ContentSnapshot]
	buildMu  sync.Mutex
}

// NewContentEngine creates an engine with no snapshot.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewContentEngine(cfg ContentConfig, logger zerolog.Logger) *ContentEngine {
	return &ContentEngine{
		config: cfg,
		logger: logger.With().Str("component", "content").Logger(),
	}
}

// Snapshot returns the current snapshot, or nil.
func (e *ContentEngine) Snapshot() *ContentSnapshot {
	return e.snapshot.Load()
}

// Current reports whether the published snapshot was built from catalog.
func (e *ContentEngine) Current(catalog []Artist) bool {
	s := e.snapshot.Load()
	return s != nil && s.Fingerprint == Fingerprint(catalog)
}

// Build vectorizes catalog, precomputes pairwise cosine similarity and
// publishes the result. An empty catalog leaves the current snapshot alone.
// This is O(n^2) in the catalog size.
func (e *ContentEngine) Build(ctx context.Context, catalog []Artist) error {
	_, err := e.publish(ctx, catalog, false)
	return err
}

// For returns a snapshot built from catalog: the published one when its
// fingerprint matches, otherwise a fresh build that is also published.
// Callers score against the returned snapshot, which stays consistent even if
// a build for another catalog is published meanwhile. An empty catalog
// returns nil.
func (e *ContentEngine) For(ctx context.Context, catalog []Artist) (*ContentSnapshot, error) {
	if len(catalog) == 0 {
		return nil, nil
	}
	fp := Fingerprint(catalog)
	if s := e.snapshot.Load(); s != nil && s.Fingerprint == fp {
		return s, nil
	}
	return e.publish(ctx, catalog, true)
}

func (e *ContentEngine) publish(ctx context.Context, catalog []Artist, reuse bool) (*ContentSnapshot, error) {
	if len(catalog) == 0 {
		return nil, nil
	}

	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	if reuse {
		// Another request may have built this catalog while we waited.
		if s := e.snapshot.Load(); s != nil && s.Fingerprint == Fingerprint(catalog) {
			return s, nil
		}
	}

	start := time.Now()
	snap, err := e.build(ctx, catalog)
	metrics.RecordRebuild(EngineContent, time.Since(start), err)
	if err != nil {
		e.logger.Error().Err(err).Int("artists", len(catalog)).Msg("content feature build failed")
		return nil, err
	}

	e.snapshot.Store(snap)
	metrics.CatalogSize.Set(float64(snap.Len()))
	e.logger.Info().
		Int("artists", snap.Len()).
		Int("vocabulary", snap.Vocabulary).
		Str("fingerprint", strconv.FormatUint(snap.Fingerprint, 16)).
		Dur("duration", time.Since(start)).
		Msg("content features published")
	return snap, nil
}

func (e *ContentEngine) build(ctx context.Context, catalog []Artist) (*ContentSnapshot, error) {
	docs := make([]string, len(catalog))
	snap := &ContentSnapshot{
		IDs:         make([]string, len(catalog)),
		Names:       make([]string, len(catalog)),
		Fingerprint: Fingerprint(catalog),
		index:       make(map[string]int, 2*len(catalog)),
	}
	for i := range catalog {
		a := &catalog[i]
		docs[i] = FeatureDocument(a)
		snap.IDs[i] = a.ID
		snap.Names[i] = a.Name
		if _, dup := snap.index["id:"+a.ID]; !dup {
			snap.index["id:"+a.ID] = i
		}
		if _, dup := snap.index["name:"+a.Name]; !dup && a.Name != "" {
			snap.index["name:"+a.Name] = i
		}
	}

	vectorizer := algorithms.NewTFIDF(algorithms.TFIDFConfig{
		MaxFeatures: e.config.MaxFeatures,
		MinN:        1,
		MaxN:        e.config.MaxNGram,
	})
	model, err := vectorizer.FitTransform(docs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap.Vocabulary = len(model.Vocabulary)
	snap.Similarity = algorithms.CosineMatrix(model.Rows, e.config.Workers)
	snap.BuiltAt = time.Now()
	return snap, nil
}

// Recommend scores against the published snapshot. It returns nothing
// until Build has run.
func (e *ContentEngine) Recommend(liked []string, n int) []Scored {
	return e.snapshot.Load().Recommend(liked, n)
}

// Recommend averages the similarity rows of the liked artists (ids or names)
// and returns the n most similar other artists by id, zero similarities
// included. Unknown liked artists are ignored; if none resolve, or s is nil,
// the result is empty.
func (s *ContentSnapshot) Recommend(liked []string, n int) []Scored {
	if s == nil || n <= 0 {
		return nil
	}

	rows := make([]int, 0, len(liked))
	exclude := make(map[int]struct{}, len(liked))
	for _, key := range liked {
		if i, ok := s.lookup(key); ok {
			if _, seen := exclude[i]; !seen {
				rows = append(rows, i)
				exclude[i] = struct{}{}
			}
		}
	}
	if len(rows) == 0 {
		return nil
	}

	avg := make([]float64, s.Len())
	for _, r := range rows {
		for j, v := range s.Similarity[r] {
			avg[j] += v
		}
	}

	out := make([]Scored, 0, len(avg))
	for j, sum := range avg {
		if _, skip := exclude[j]; skip {
			continue
		}
		out = append(out, Scored{Item: s.IDs[j], Score: sum / float64(len(rows))})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// IsEmptyVocabulary reports whether err came from a catalog without terms.
func IsEmptyVocabulary(err error) bool {
	return errors.Is(err, ErrEmptyVocabulary)
}
