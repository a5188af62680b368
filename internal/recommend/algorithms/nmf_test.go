// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"
)

// blockMatrix returns an 8x8 matrix with two dense blocks of users and items.
func blockMatrix() [][]float64 {
	v := make([][]float64, 8)
	for i := range v {
		v[i] = make([]float64, 8)
		for j := range v[i] {
			switch {
			case i < 4 && j < 4:
				v[i][j] = 5
			case i >= 4 && j >= 4:
				v[i][j] = 3
			case (i+j)%5 == 0:
				v[i][j] = 1
			}
		}
	}
	return v
}

func TestEffectiveComponents(t *testing.T) {
	tests := []struct {
		requested, rows, cols, want int
	}{
		{20, 100, 50, 20},
		{20, 6, 10, 5},
		{20, 10, 3, 2},
		{20, 1, 1, 1},
		{3, 2, 2, 1},
	}
	for _, tt := range tests {
		if got := EffectiveComponents(tt.requested, tt.rows, tt.cols); got != tt.want {
			t.Errorf("EffectiveComponents(%d, %d, %d) = %d, want %d",
				tt.requested, tt.rows, tt.cols, got, tt.want)
		}
	}
}

func TestNMFFitNonNegative(t *testing.T) {
	v := blockMatrix()
	v[0][7] = -2 // absolute value is factorized

	f, err := NewNMF(NMFConfig{Components: 3, NumWorkers: 2}).Fit(context.Background(), v)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if f.K != 3 {
		t.Errorf("K = %d, want 3", f.K)
	}
	if v[0][7] != -2 {
		t.Error("Fit modified its input")
	}
	for i, row := range f.W {
		for k, w := range row {
			if w < 0 || math.IsNaN(w) {
				t.Fatalf("W[%d][%d] = %v", i, k, w)
			}
		}
	}
	for k, row := range f.H {
		for j, h := range row {
			if h < 0 || math.IsNaN(h) {
				t.Fatalf("H[%d][%d] = %v", k, j, h)
			}
		}
	}
	if got := len(f.Predict(0)); got != 8 {
		t.Errorf("len(Predict(0)) = %d, want 8", got)
	}
	if f.Predict(99) != nil {
		t.Error("Predict out of range should be nil")
	}
}

func TestNMFLargerKDoesNotDegrade(t *testing.T) {
	v := blockMatrix()
	ctx := context.Background()

	small, err := NewNMF(NMFConfig{Components: 1, AlphaW: 0.1, AlphaH: 0.1}).Fit(ctx, v)
	if err != nil {
		t.Fatalf("k=1: %v", err)
	}
	large, err := NewNMF(NMFConfig{Components: 4, AlphaW: 0.1, AlphaH: 0.1}).Fit(ctx, v)
	if err != nil {
		t.Fatalf("k=4: %v", err)
	}

	// Small slack for regularization and early stopping.
	if large.Error > small.Error*1.05 {
		t.Errorf("reconstruction error k=4 (%.4f) worse than k=1 (%.4f)", large.Error, small.Error)
	}
}

func TestNMFDeterministic(t *testing.T) {
	v := blockMatrix()
	nmf := NewNMF(NMFConfig{Components: 3, Seed: 7})

	a, err := nmf.Fit(context.Background(), v)
	if err != nil {
		t.Fatal(err)
	}
	b, err := nmf.Fit(context.Background(), v)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.W {
		for k := range a.W[i] {
			if a.W[i][k] != b.W[i][k] {
				t.Fatalf("W differs at (%d,%d)", i, k)
			}
		}
	}
}

func TestNMFErrors(t *testing.T) {
	nmf := NewNMF(DefaultNMFConfig())

	if _, err := nmf.Fit(context.Background(), nil); !errors.Is(err, ErrEmptyMatrix) {
		t.Errorf("empty: err = %v, want ErrEmptyMatrix", err)
	}

	if _, err := nmf.Fit(context.Background(), [][]float64{{1, math.NaN()}, {1, 2}}); !errors.Is(err, ErrNumerical) {
		t.Errorf("NaN: err = %v, want ErrNumerical", err)
	}

	if _, err := nmf.Fit(context.Background(), [][]float64{{1, 2}, {1}}); err == nil {
		t.Error("ragged matrix should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := nmf.Fit(ctx, blockMatrix()); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: err = %v", err)
	}
}
