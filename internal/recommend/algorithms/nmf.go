// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	// ErrEmptyMatrix is returned when there is nothing to factorize.
	ErrEmptyMatrix = errors.New("matrix has no rows or columns")

	// ErrNumerical is returned when an update produces NaN or Inf.
	ErrNumerical = errors.New("factorization diverged")
)

// NMFConfig contains parameters for non-negative matrix factorization.
type NMFConfig struct {
	// Components is the requested number of latent factors.
	// The effective count is capped by EffectiveComponents.
	// Default: 20
	Components int

	// MaxIter is the maximum number of multiplicative update rounds.
	// Default: 500
	MaxIter int

	// Tolerance stops iteration once the relative improvement of the
	// reconstruction error between checks falls below it.
	// Default: 1e-4
	Tolerance float64

	// AlphaW and AlphaH are L2 regularization strengths on the user and
	// item factors.
	// Default: 0.1
	AlphaW float64
	AlphaH float64

	// Seed drives the random initialization.
	// Default: 42
	Seed int64

	// NumWorkers bounds parallel row and column updates.
	// Default: GOMAXPROCS
	NumWorkers int
}

// DefaultNMFConfig returns the default NMF parameters.
func DefaultNMFConfig() NMFConfig {
	return NMFConfig{
		Components: 20,
		MaxIter:    500,
		Tolerance:  1e-4,
		AlphaW:     0.1,
		AlphaH:     0.1,
		Seed:       42,
	}
}

// checkEvery is the number of iterations between convergence checks.
const checkEvery = 10

// eps keeps multiplicative update denominators positive.
const eps = 1e-10

// NMF factorizes a non-negative matrix V (n x m) into W (n x k) and H (k x m)
// using regularized multiplicative updates.
type NMF struct {
	config NMFConfig
}

// NewNMF creates an NMF solver. Zero-valued fields take their defaults.
func NewNMF(cfg NMFConfig) *NMF {
	def := DefaultNMFConfig()
	if cfg.Components <= 0 {
		cfg.Components = def.Components
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = def.MaxIter
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.AlphaW < 0 {
		cfg.AlphaW = 0
	}
	if cfg.AlphaH < 0 {
		cfg.AlphaH = 0
	}
	return &NMF{config: cfg}
}

// Config returns the solver configuration after defaults.
func (n *NMF) Config() NMFConfig { return n.config }

// EffectiveComponents returns min(requested, min(rows, cols)-1), floored at 1.
func EffectiveComponents(requested, rows, cols int) int {
	k := requested
	if limit := min(rows, cols) - 1; limit < k {
		k = limit
	}
	if k < 1 {
		k = 1
	}
	return k
}

// Factorization is the result of an NMF fit. It is immutable.
type Factorization struct {
	// W holds one factor row per matrix row.
	W [][]float64

	// H holds one row per latent factor, one column per matrix column.
	H [][]float64

	// K is the number of latent factors actually used.
	K int

	// Iterations is the number of update rounds performed.
	Iterations int

	// Error is the final Frobenius reconstruction error.
	Error float64
}

// Predict returns the reconstructed row i: W[i] * H.
func (f *Factorization) Predict(i int) []float64 {
	if i < 0 || i >= len(f.W) {
		return nil
	}
	cols := 0
	if f.K > 0 {
		cols = len(f.H[0])
	}
	out := make([]float64, cols)
	for k, w := range f.W[i] {
		if w == 0 {
			continue
		}
		hk := f.H[k]
		for j := range out {
			out[j] += w * hk[j]
		}
	}
	return out
}

// Fit factorizes v. Negative entries are replaced by their absolute value.
// v is not modified.
func (n *NMF) Fit(ctx context.Context, v [][]float64) (*Factorization, error) {
	rows := len(v)
	if rows == 0 || len(v[0]) == 0 {
		return nil, ErrEmptyMatrix
	}
	cols := len(v[0])
	k := EffectiveComponents(n.config.Components, rows, cols)

	V := make([][]float64, rows)
	var sum float64
	for i := range v {
		if len(v[i]) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(v[i]), cols)
		}
		V[i] = make([]float64, cols)
		for j, x := range v[i] {
			x = math.Abs(x)
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: input value at (%d,%d) is not finite", ErrNumerical, i, j)
			}
			V[i][j] = x
			sum += x
		}
	}

	W, H := n.initFactors(rows, cols, k, sum/float64(rows*cols))

	initErr := reconstructionError(V, W, H)
	prevErr := initErr
	iter := 0

	for iter < n.config.MaxIter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n.updateH(V, W, H)
		n.updateW(V, W, H)
		iter++

		if iter%checkEvery != 0 {
			continue
		}
		curErr := reconstructionError(V, W, H)
		if math.IsNaN(curErr) || math.IsInf(curErr, 0) {
			return nil, fmt.Errorf("%w after %d iterations", ErrNumerical, iter)
		}
		if initErr > 0 && (prevErr-curErr)/initErr < n.config.Tolerance {
			prevErr = curErr
			break
		}
		prevErr = curErr
	}

	finalErr := reconstructionError(V, W, H)
	if math.IsNaN(finalErr) || math.IsInf(finalErr, 0) {
		return nil, fmt.Errorf("%w after %d iterations", ErrNumerical, iter)
	}

	return &Factorization{W: W, H: H, K: k, Iterations: iter, Error: finalErr}, nil
}

// initFactors fills W and H with |N(0,1)| * sqrt(mean/k) from a seeded source.
func (n *NMF) initFactors(rows, cols, k int, mean float64) (W, H [][]float64) {
	rng := rand.New(rand.NewSource(n.config.Seed)) //nolint:gosec // deterministic init, not security sensitive
	scale := math.Sqrt(mean / float64(k))

	H = make([][]float64, k)
	for f := range H {
		H[f] = make([]float64, cols)
		for j := range H[f] {
			H[f][j] = scale * math.Abs(rng.NormFloat64())
		}
	}
	W = make([][]float64, rows)
	for i := range W {
		W[i] = make([]float64, k)
		for f := range W[i] {
			W[i][f] = scale * math.Abs(rng.NormFloat64())
		}
	}
	return W, H
}

// updateH applies H <- H * (W'V) / (W'W H + alphaH H).
func (n *NMF) updateH(V, W, H [][]float64) {
	k := len(H)
	cols := len(H[0])
	wtw := gram(W, k)

	parallelFor(cols, n.config.NumWorkers, func(start, end int) {
		numer := make([]float64, k)
		denom := make([]float64, k)
		for j := start; j < end; j++ {
			for f := 0; f < k; f++ {
				numer[f] = 0
				denom[f] = 0
			}
			for i, row := range W {
				vij := V[i][j]
				if vij == 0 {
					continue
				}
				for f, w := range row {
					numer[f] += w * vij
				}
			}
			for f := 0; f < k; f++ {
				var d float64
				for g := 0; g < k; g++ {
					d += wtw[f][g] * H[g][j]
				}
				denom[f] = d + n.config.AlphaH*H[f][j] + eps
			}
			for f := 0; f < k; f++ {
				H[f][j] *= numer[f] / denom[f]
			}
		}
	})
}

// updateW applies W <- W * (V H') / (W H H' + alphaW W).
func (n *NMF) updateW(V, W, H [][]float64) {
	k := len(H)
	hht := make([][]float64, k)
	for f := range hht {
		hht[f] = make([]float64, k)
		for g := 0; g <= f; g++ {
			var s float64
			for j := range H[f] {
				s += H[f][j] * H[g][j]
			}
			hht[f][g] = s
			hht[g][f] = s
		}
	}

	parallelFor(len(W), n.config.NumWorkers, func(start, end int) {
		numer := make([]float64, k)
		for i := start; i < end; i++ {
			row := V[i]
			for f := 0; f < k; f++ {
				var s float64
				for j, vij := range row {
					if vij != 0 {
						s += vij * H[f][j]
					}
				}
				numer[f] = s
			}
			w := W[i]
			denom := make([]float64, k)
			for f := 0; f < k; f++ {
				var d float64
				for g := 0; g < k; g++ {
					d += w[g] * hht[g][f]
				}
				denom[f] = d + n.config.AlphaW*w[f] + eps
			}
			for f := 0; f < k; f++ {
				w[f] *= numer[f] / denom[f]
			}
		}
	})
}

// gram returns W'W for W with k columns.
func gram(W [][]float64, k int) [][]float64 {
	g := make([][]float64, k)
	for f := range g {
		g[f] = make([]float64, k)
	}
	for _, row := range W {
		for f := 0; f < k; f++ {
			if row[f] == 0 {
				continue
			}
			for h := f; h < k; h++ {
				g[f][h] += row[f] * row[h]
			}
		}
	}
	for f := 0; f < k; f++ {
		for h := 0; h < f; h++ {
			g[f][h] = g[h][f]
		}
	}
	return g
}

// reconstructionError returns ||V - WH||_F.
func reconstructionError(V, W, H [][]float64) float64 {
	var sum float64
	for i, row := range V {
		for j, vij := range row {
			var p float64
			for f, w := range W[i] {
				p += w * H[f][j]
			}
			d := vij - p
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}
