// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestAnalyze(t *testing.T) {
	v := NewTFIDF(DefaultTFIDFConfig())
	terms := v.Analyze("Indie Rock and the language_english")

	for _, want := range []string{"indie", "rock", "language_english", "indie rock", "rock language_english"} {
		if !slices.Contains(terms, want) {
			t.Errorf("terms %v missing %q", terms, want)
		}
	}
	for _, stop := range []string{"and", "the"} {
		if slices.Contains(terms, stop) {
			t.Errorf("stop word %q not removed", stop)
		}
	}
}

func TestFitTransform(t *testing.T) {
	docs := []string{
		"pop dance language_english tier_popular",
		"pop dance language_english tier_popular",
		"jazz bebop language_french tier_niche",
	}

	model, err := NewTFIDF(DefaultTFIDFConfig()).FitTransform(docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if !slices.IsSorted(model.Vocabulary) {
		t.Error("vocabulary not sorted")
	}
	for d, row := range model.Rows {
		if n := row.Norm(); math.Abs(n-1) > 1e-9 {
			t.Errorf("row %d norm = %v, want 1", d, n)
		}
	}

	sim := CosineMatrix(model.Rows, 2)
	if math.Abs(sim[0][1]-1) > 1e-9 {
		t.Errorf("identical docs similarity = %v, want 1", sim[0][1])
	}
	if sim[0][2] != 0 {
		t.Errorf("disjoint docs similarity = %v, want 0", sim[0][2])
	}
	if sim[1][0] != sim[0][1] {
		t.Error("similarity matrix not symmetric")
	}
}

func TestFitTransformMaxFeatures(t *testing.T) {
	docs := []string{"aa bb cc", "aa bb", "aa"}
	model, err := NewTFIDF(TFIDFConfig{MaxFeatures: 2, MinN: 1, MaxN: 1}).FitTransform(docs)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(model.Vocabulary, []string{"aa", "bb"}) {
		t.Errorf("Vocabulary = %v, want [aa bb]", model.Vocabulary)
	}
	if len(model.Rows[2].Indices) != 1 {
		t.Errorf("row 2 indices = %v", model.Rows[2].Indices)
	}
}

func TestFitTransformEmptyVocabulary(t *testing.T) {
	_, err := NewTFIDF(DefaultTFIDFConfig()).FitTransform([]string{"the and", "a"})
	if !errors.Is(err, ErrEmptyVocabulary) {
		t.Errorf("err = %v, want ErrEmptyVocabulary", err)
	}
}

func TestCosine(t *testing.T) {
	a := SparseVector{Indices: []int{0, 2}, Values: []float64{1, 1}}
	b := SparseVector{Indices: []int{2, 5}, Values: []float64{1, 1}}
	if got := Cosine(a, b); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Cosine = %v, want 0.5", got)
	}
	if got := Cosine(a, SparseVector{}); got != 0 {
		t.Errorf("Cosine with zero vector = %v, want 0", got)
	}
}
