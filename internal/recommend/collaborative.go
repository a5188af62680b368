// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/recommend/algorithms"
)

// ErrFactorization is returned when the collaborative model cannot be trained.
var ErrFactorization = errors.New("factorization failed")

// Factors is an immutable collaborative model snapshot.
type Factors struct {
	// Matrix is the filtered matrix the model was trained on. Its values are
	// the original affinities, used to exclude already-seen items.
	Matrix *algorithms.Matrix

	// Model is nil when the filtered matrix was empty.
	Model *algorithms.Factorization

	BuiltAt  time.Time
	Duration time.Duration
}

// Trained reports whether the snapshot holds a usable model.
func (f *Factors) Trained() bool {
	return f != nil && f.Model != nil && !f.Matrix.Empty()
}

// CollaborativeEngine predicts unseen-item affinity from NMF latent factors.
// It is safe for concurrent use. Readers load the current snapshot without
// locking; Rebuild publishes a new snapshot only after it is fully built.
type CollaborativeEngine struct {
	builder *MatrixBuilder
	config  FactorizationConfig
	logger  zerolog.Logger

	snapshot atomic.Pointer[Factors]
	buildMu  sync.Mutex
	group    singleflight.Group
}

// NewCollaborativeEngine creates an untrained engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCollaborativeEngine(builder *MatrixBuilder, cfg FactorizationConfig, logger zerolog.Logger) *CollaborativeEngine {
	return &CollaborativeEngine{
		builder: builder,
		config:  cfg,
		logger:  logger.With().Str("component", "collaborative").Logger(),
	}
}

// Snapshot returns the current model, or nil if none was built.
func (e *CollaborativeEngine) Snapshot() *Factors {
	return e.snapshot.Load()
}

// Rebuild builds the matrix, trains a new model and publishes it.
// Concurrent calls are serialized; the previous snapshot stays visible until
// the new one is complete.
func (e *CollaborativeEngine) Rebuild(ctx context.Context) (*Factors, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	start := time.Now()
	f, err := e.train(ctx)
	metrics.RecordRebuild(EngineCollaborative, time.Since(start), err)
	if err != nil {
		e.logger.Error().Err(err).Msg("collaborative rebuild failed")
		return nil, err
	}
	f.Duration = time.Since(start)

	e.snapshot.Store(f)
	metrics.RecordMatrix(f.Matrix.Rows(), f.Matrix.Cols())

	ev := e.logger.Info().
		Int("users", f.Matrix.Rows()).
		Int("items", f.Matrix.Cols()).
		Dur("duration", f.Duration)
	if f.Model != nil {
		ev = ev.Int("components", f.Model.K).Int("iterations", f.Model.Iterations).Float64("error", f.Model.Error)
	}
	ev.Msg("collaborative model published")
	return f, nil
}

func (e *CollaborativeEngine) train(ctx context.Context) (*Factors, error) {
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	raw, err := e.builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	filtered := raw.Filter(e.builder.MinInteractions())

	f := &Factors{Matrix: filtered, BuiltAt: time.Now()}
	if filtered.Empty() {
		e.logger.Warn().
			Int("raw_users", raw.Rows()).
			Int("raw_items", raw.Cols()).
			Int("min_interactions", e.builder.MinInteractions()).
			Msg("no data left after support filter")
		return f, nil
	}

	nmf := algorithms.NewNMF(algorithms.NMFConfig{
		Components: e.config.Components,
		MaxIter:    e.config.MaxIter,
		Tolerance:  e.config.Tolerance,
		AlphaW:     e.config.Alpha,
		AlphaH:     e.config.Alpha,
		Seed:       e.config.Seed,
		NumWorkers: e.config.Workers,
	})
	model, err := nmf.Fit(ctx, filtered.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFactorization, err)
	}
	f.Model = model
	return f, nil
}

// ensure returns the current snapshot, building one if none exists.
// Concurrent first callers share a single build.
func (e *CollaborativeEngine) ensure(ctx context.Context) (*Factors, error) {
	if f := e.snapshot.Load(); f != nil {
		return f, nil
	}
	v, err, _ := e.group.Do("rebuild", func() (any, error) {
		if f := e.snapshot.Load(); f != nil {
			return f, nil
		}
		return e.Rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Factors), nil
}

// Recommend returns up to n items the user has not interacted with, ordered
// by predicted affinity. Users outside the filtered matrix get no results.
// Pseudo-items are never returned.
func (e *CollaborativeEngine) Recommend(ctx context.Context, userID string, n int) ([]Scored, error) {
	f, err := e.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return f.Recommend(userID, n), nil
}

// Recommend scores unseen items for userID against this snapshot.
func (f *Factors) Recommend(userID string, n int) []Scored {
	if !f.Trained() || n <= 0 {
		return nil
	}
	i, ok := f.Matrix.UserIndex(userID)
	if !ok {
		return nil
	}

	original := f.Matrix.Values[i]
	predicted := f.Model.Predict(i)

	out := make([]Scored, 0, len(predicted))
	for j, score := range predicted {
		if original[j] != 0 {
			continue
		}
		item := f.Matrix.Items[j]
		if IsPseudoItem(item) {
			continue
		}
		out = append(out, Scored{Item: item, Score: score})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
