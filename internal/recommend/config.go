// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"errors"
	"fmt"
	"time"
)

// Config contains all tunables of the scoring engines.
type Config struct {
	// Weights are the fixed hybrid contributions. They are not normalized.
	Weights HybridWeights `json:"weights" koanf:"weights"`

	// Matrix controls affinity matrix construction.
	Matrix MatrixConfig `json:"matrix" koanf:"matrix"`

	// Factorization controls the collaborative model.
	Factorization FactorizationConfig `json:"factorization" koanf:"factorization"`

	// Content controls TF-IDF vectorization of the catalog.
	Content ContentConfig `json:"content" koanf:"content"`

	// Behavior controls windowed behavior summaries.
	Behavior BehaviorConfig `json:"behavior" koanf:"behavior"`

	// Prediction holds the rule thresholds and confidence formulas.
	Prediction PredictionConfig `json:"prediction" koanf:"prediction"`

	// Limits bounds request sizes.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache controls the per-user hybrid result cache.
	Cache CacheConfig `json:"cache" koanf:"cache"`

	// Diversity optionally reorders hybrid results by genre novelty.
	Diversity DiversityConfig `json:"diversity" koanf:"diversity"`
}

// HybridWeights are the per-signal contributions to a hybrid score.
type HybridWeights struct {
	// Content multiplies content similarity. Default: 0.4
	Content float64 `json:"content" koanf:"content"`

	// Collaborative multiplies the predicted collaborative score. Default: 0.3
	Collaborative float64 `json:"collaborative" koanf:"collaborative"`

	// GenreBoost is added once per item genre that was predicted. Default: 0.2
	GenreBoost float64 `json:"genre_boost" koanf:"genre_boost"`

	// LanguageBoost is added when the item language was predicted. Default: 0.1
	LanguageBoost float64 `json:"language_boost" koanf:"language_boost"`
}

// MatrixConfig defines explicit and implicit affinity weights.
type MatrixConfig struct {
	// FavoriteArtist is assigned for each stated favorite artist. Default: 5.0
	FavoriteArtist float64 `json:"favorite_artist" koanf:"favorite_artist"`

	// FavoriteGenre is assigned to the genre_<g> pseudo-item. Default: 3.0
	FavoriteGenre float64 `json:"favorite_genre" koanf:"favorite_genre"`

	// ArtistView is added per artist_view event. Default: 0.5
	ArtistView float64 `json:"artist_view" koanf:"artist_view"`

	// Engagement is added per click or positive feedback. Default: 1.0
	Engagement float64 `json:"engagement" koanf:"engagement"`

	// Search is added to the search_<query> pseudo-item. Default: 0.2
	Search float64 `json:"search" koanf:"search"`

	// MinInteractions is the support filter threshold for users and items.
	// Default: 5
	MinInteractions int `json:"min_interactions" koanf:"min_interactions"`
}

// FactorizationConfig defines the NMF parameters.
type FactorizationConfig struct {
	// Components is the requested latent factor count. Default: 20
	Components int `json:"components" koanf:"components"`

	// MaxIter bounds the update rounds. Default: 500
	MaxIter int `json:"max_iter" koanf:"max_iter"`

	// Tolerance is the relative improvement stop criterion. Default: 1e-4
	Tolerance float64 `json:"tolerance" koanf:"tolerance"`

	// Alpha is the L2 regularization on both factor matrices. Default: 0.1
	Alpha float64 `json:"alpha" koanf:"alpha"`

	// Seed drives factor initialization. Default: 42
	Seed int64 `json:"seed" koanf:"seed"`

	// Workers bounds parallel updates. 0 uses GOMAXPROCS.
	Workers int `json:"workers" koanf:"workers"`

	// Timeout bounds a single rebuild. Default: 5m
	Timeout time.Duration `json:"timeout" koanf:"timeout"`
}

// ContentConfig defines TF-IDF parameters.
type ContentConfig struct {
	// MaxFeatures caps the vocabulary. Default: 1000
	MaxFeatures int `json:"max_features" koanf:"max_features"`

	// MaxNGram is the largest n-gram extracted. Default: 2
	MaxNGram int `json:"max_ngram" koanf:"max_ngram"`

	// Workers bounds the parallel similarity computation. 0 uses GOMAXPROCS.
	Workers int `json:"workers" koanf:"workers"`
}

// BehaviorConfig bounds behavior summaries.
type BehaviorConfig struct {
	// WindowDays is the default look-back. Default: 30
	WindowDays int `json:"window_days" koanf:"window_days"`

	// QueryLimit caps events fetched per summary. Default: 100
	QueryLimit int `json:"query_limit" koanf:"query_limit"`
}

// PredictionConfig holds the prediction rule constants.
type PredictionConfig struct {
	// MinSearchFrequency is the search count needed to predict a genre. Default: 2
	MinSearchFrequency int `json:"min_search_frequency" koanf:"min_search_frequency"`

	// SearchDivisor and SearchCap give confidence min(f/divisor, cap). Default: 5, 0.8
	SearchDivisor float64 `json:"search_divisor" koanf:"search_divisor"`
	SearchCap     float64 `json:"search_cap" koanf:"search_cap"`

	// BehaviorTop is how many histogram genres the first fallback uses. Default: 3
	BehaviorTop int `json:"behavior_top" koanf:"behavior_top"`

	// BehaviorDivisor and BehaviorCap give min(count/divisor, cap). Default: 10, 0.7
	BehaviorDivisor float64 `json:"behavior_divisor" koanf:"behavior_divisor"`
	BehaviorCap     float64 `json:"behavior_cap" koanf:"behavior_cap"`

	// StatedTop is how many favorite genres the second fallback uses. Default: 2
	StatedTop int `json:"stated_top" koanf:"stated_top"`

	// StatedConfidence is the second fallback confidence. Default: 0.6
	StatedConfidence float64 `json:"stated_confidence" koanf:"stated_confidence"`

	// DefaultGenres and DefaultConfidence form the last fallback.
	// Default: pop, rock, electronic at 0.4
	DefaultGenres     []string `json:"default_genres" koanf:"default_genres"`
	DefaultConfidence float64  `json:"default_confidence" koanf:"default_confidence"`

	// MinLanguageFrequency, LanguageDivisor and LanguageCap drive language
	// predictions. Default: 2, 5, 0.8
	MinLanguageFrequency int     `json:"min_language_frequency" koanf:"min_language_frequency"`
	LanguageDivisor      float64 `json:"language_divisor" koanf:"language_divisor"`
	LanguageCap          float64 `json:"language_cap" koanf:"language_cap"`

	// HighDiscoveryRate and HighActivity trigger reasoning notes. Default: 0.3, 50
	HighDiscoveryRate float64 `json:"high_discovery_rate" koanf:"high_discovery_rate"`
	HighActivity      int     `json:"high_activity" koanf:"high_activity"`

	// ArtistCandidates and MinArtistScore select collaborative artist
	// predictions. Default: 5, 0.5
	ArtistCandidates int     `json:"artist_candidates" koanf:"artist_candidates"`
	MinArtistScore   float64 `json:"min_artist_score" koanf:"min_artist_score"`
}

// LimitsConfig bounds request sizes.
type LimitsConfig struct {
	// DefaultN is used when a request asks for 0 results. Default: 10
	DefaultN int `json:"default_n" koanf:"default_n"`

	// MaxN caps requested result counts. Default: 50
	MaxN int `json:"max_n" koanf:"max_n"`
}

// CacheConfig controls the hybrid result cache.
type CacheConfig struct {
	Enabled    bool          `json:"enabled" koanf:"enabled"`
	TTL        time.Duration `json:"ttl" koanf:"ttl"`
	MaxEntries int           `json:"max_entries" koanf:"max_entries"`
}

// DiversityConfig controls MMR reordering of hybrid results. Disabled, the
// hybrid list is ordered by score alone.
type DiversityConfig struct {
	Enabled bool `json:"enabled" koanf:"enabled"`

	// Lambda trades relevance (1.0) against genre diversity (0.0). Default: 0.7
	Lambda float64 `json:"lambda" koanf:"lambda"`
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: HybridWeights{
			Content:       0.4,
			Collaborative: 0.3,
			GenreBoost:    0.2,
			LanguageBoost: 0.1,
		},
		Matrix: MatrixConfig{
			FavoriteArtist:  5.0,
			FavoriteGenre:   3.0,
			ArtistView:      0.5,
			Engagement:      1.0,
			Search:          0.2,
			MinInteractions: 5,
		},
		Factorization: FactorizationConfig{
			Components: 20,
			MaxIter:    500,
			Tolerance:  1e-4,
			Alpha:      0.1,
			Seed:       42,
			Timeout:    5 * time.Minute,
		},
		Content: ContentConfig{
			MaxFeatures: 1000,
			MaxNGram:    2,
		},
		Behavior: BehaviorConfig{
			WindowDays: 30,
			QueryLimit: 100,
		},
		Prediction: PredictionConfig{
			MinSearchFrequency:   2,
			SearchDivisor:        5,
			SearchCap:            0.8,
			BehaviorTop:          3,
			BehaviorDivisor:      10,
			BehaviorCap:          0.7,
			StatedTop:            2,
			StatedConfidence:     0.6,
			DefaultGenres:        []string{"pop", "rock", "electronic"},
			DefaultConfidence:    0.4,
			MinLanguageFrequency: 2,
			LanguageDivisor:      5,
			LanguageCap:          0.8,
			HighDiscoveryRate:    0.3,
			HighActivity:         50,
			ArtistCandidates:     5,
			MinArtistScore:       0.5,
		},
		Limits: LimitsConfig{
			DefaultN: 10,
			MaxN:     50,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		Diversity: DiversityConfig{
			Lambda: 0.7,
		},
	}
}

// Validate checks the configuration for values the engines cannot use.
func (c *Config) Validate() error {
	var errs []error

	for name, w := range map[string]float64{
		"weights.content":        c.Weights.Content,
		"weights.collaborative":  c.Weights.Collaborative,
		"weights.genre_boost":    c.Weights.GenreBoost,
		"weights.language_boost": c.Weights.LanguageBoost,
		"matrix.favorite_artist": c.Matrix.FavoriteArtist,
		"matrix.favorite_genre":  c.Matrix.FavoriteGenre,
		"matrix.artist_view":     c.Matrix.ArtistView,
		"matrix.engagement":      c.Matrix.Engagement,
		"matrix.search":          c.Matrix.Search,
	} {
		if w < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative, got %f", name, w))
		}
	}

	if c.Matrix.MinInteractions < 0 {
		errs = append(errs, fmt.Errorf("matrix.min_interactions must be non-negative, got %d", c.Matrix.MinInteractions))
	}
	if c.Factorization.Components < 1 {
		errs = append(errs, fmt.Errorf("factorization.components must be positive, got %d", c.Factorization.Components))
	}
	if c.Factorization.MaxIter < 1 {
		errs = append(errs, fmt.Errorf("factorization.max_iter must be positive, got %d", c.Factorization.MaxIter))
	}
	if c.Factorization.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("factorization.tolerance must be positive, got %g", c.Factorization.Tolerance))
	}
	if c.Factorization.Alpha < 0 {
		errs = append(errs, fmt.Errorf("factorization.alpha must be non-negative, got %f", c.Factorization.Alpha))
	}
	if c.Content.MaxFeatures < 1 {
		errs = append(errs, fmt.Errorf("content.max_features must be positive, got %d", c.Content.MaxFeatures))
	}
	if c.Content.MaxNGram < 1 {
		errs = append(errs, fmt.Errorf("content.max_ngram must be positive, got %d", c.Content.MaxNGram))
	}
	if c.Behavior.WindowDays < 1 {
		errs = append(errs, fmt.Errorf("behavior.window_days must be positive, got %d", c.Behavior.WindowDays))
	}
	if c.Behavior.QueryLimit < 1 {
		errs = append(errs, fmt.Errorf("behavior.query_limit must be positive, got %d", c.Behavior.QueryLimit))
	}

	p := c.Prediction
	if p.SearchDivisor <= 0 || p.BehaviorDivisor <= 0 || p.LanguageDivisor <= 0 {
		errs = append(errs, errors.New("prediction divisors must be positive"))
	}
	for name, v := range map[string]float64{
		"prediction.search_cap":         p.SearchCap,
		"prediction.behavior_cap":       p.BehaviorCap,
		"prediction.language_cap":       p.LanguageCap,
		"prediction.stated_confidence":  p.StatedConfidence,
		"prediction.default_confidence": p.DefaultConfidence,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0,1], got %f", name, v))
		}
	}

	if c.Limits.DefaultN < 1 {
		errs = append(errs, fmt.Errorf("limits.default_n must be positive, got %d", c.Limits.DefaultN))
	}
	if c.Limits.MaxN < c.Limits.DefaultN {
		errs = append(errs, fmt.Errorf("limits.max_n (%d) must be >= limits.default_n (%d)", c.Limits.MaxN, c.Limits.DefaultN))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive when the cache is enabled, got %v", c.Cache.TTL))
	}
	if c.Diversity.Lambda < 0 || c.Diversity.Lambda > 1 {
		errs = append(errs, fmt.Errorf("diversity.lambda must be in [0,1], got %f", c.Diversity.Lambda))
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Prediction.DefaultGenres = append([]string(nil), c.Prediction.DefaultGenres...)
	return &clone
}

// ClampN applies the default and maximum result counts to n.
func (c *Config) ClampN(n int) int {
	if n <= 0 {
		return c.Limits.DefaultN
	}
	if n > c.Limits.MaxN {
		return c.Limits.MaxN
	}
	return n
}
