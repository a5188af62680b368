// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package reranking

import (
	"math"
	"strings"

	"github.com/tomtom215/cadence/internal/recommend"
)

// MMR implements Maximal Marginal Relevance over artist genres:
//
//	next = argmax[lambda * rel(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// rel is the hybrid score divided by the list's best score, so lambda means
// the same thing whatever the weights are. sim is genre Jaccard similarity.
//
// Carbonell & Goldstein, "The Use of MMR, Diversity-Based Reranking for
// Reordering Documents and Producing Summaries", SIGIR 1998.
type MMR struct {
	lambda float64
}

// NewMMR creates a reranker. lambda is clamped to [0,1].
func NewMMR(lambda float64) *MMR {
	return &MMR{lambda: math.Max(0, math.Min(1, lambda))}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Rerank returns the first k of items in MMR order. Scores are left as they
// were; only the order changes. items is not modified.
func (m *MMR) Rerank(items []recommend.Recommendation, k int) []recommend.Recommendation {
	if k <= 0 || len(items) == 0 {
		return []recommend.Recommendation{}
	}
	if k > len(items) {
		k = len(items)
	}
	if m.lambda >= 1.0 {
		return append([]recommend.Recommendation(nil), items[:k]...)
	}

	maxScore := 0.0
	for i := range items {
		maxScore = math.Max(maxScore, items[i].Score)
	}
	genres := make([]map[string]struct{}, len(items))
	for i := range items {
		genres[i] = genreSet(items[i].Genres)
	}

	// maxSim[i] is item i's highest similarity to anything selected so far.
	maxSim := make([]float64, len(items))
	taken := make([]bool, len(items))
	out := make([]recommend.Recommendation, 0, k)

	for len(out) < k {
		best, bestScore := -1, math.Inf(-1)
		for i := range items {
			if taken[i] {
				continue
			}
			rel := 0.0
			if maxScore > 0 {
				rel = items[i].Score / maxScore
			}
			// Strict > keeps the original order on ties.
			if s := m.lambda*rel - (1-m.lambda)*maxSim[i]; s > bestScore {
				best, bestScore = i, s
			}
		}

		taken[best] = true
		out = append(out, items[best])
		for i := range items {
			if !taken[i] {
				maxSim[i] = math.Max(maxSim[i], jaccard(genres[i], genres[best]))
			}
		}
	}
	return out
}

func genreSet(genres []string) map[string]struct{} {
	set := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		set[strings.ToLower(g)] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for g := range a {
		if _, ok := b[g]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
