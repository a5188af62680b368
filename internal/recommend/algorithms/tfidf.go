// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ErrEmptyVocabulary is returned when no document yields a usable term.
var ErrEmptyVocabulary = errors.New("empty vocabulary; documents contain only stop words or no tokens")

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// TFIDFConfig contains parameters for TF-IDF vectorization.
type TFIDFConfig struct {
	// MaxFeatures caps the vocabulary to the most frequent terms across the corpus.
	// Default: 1000
	MaxFeatures int

	// MinN and MaxN bound the n-gram sizes extracted from each document.
	// Default: 1 and 2
	MinN int
	MaxN int

	// StopWords are removed before n-grams are formed. Nil uses EnglishStopWords.
	StopWords map[string]struct{}
}

// DefaultTFIDFConfig returns the default vectorizer parameters.
func DefaultTFIDFConfig() TFIDFConfig {
	return TFIDFConfig{MaxFeatures: 1000, MinN: 1, MaxN: 2}
}

// SparseVector is a vector stored as ascending indices with their values.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Norm returns the Euclidean norm.
func (s SparseVector) Norm() float64 {
	var sum float64
	for _, v := range s.Values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of two sparse vectors.
func (s SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(s.Indices) && j < len(o.Indices) {
		switch {
		case s.Indices[i] == o.Indices[j]:
			sum += s.Values[i] * o.Values[j]
			i++
			j++
		case s.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// TFIDFModel is a fitted vocabulary with the transformed corpus.
type TFIDFModel struct {
	// Vocabulary is sorted alphabetically; a term's position is its column.
	Vocabulary []string

	// IDF holds the smoothed inverse document frequency per column.
	IDF []float64

	// Rows holds one L2-normalized vector per input document.
	Rows []SparseVector
}

// TFIDF vectorizes documents with term frequency times smoothed inverse
// document frequency.
type TFIDF struct {
	config TFIDFConfig
}

// NewTFIDF creates a vectorizer. Zero-valued fields take their defaults.
func NewTFIDF(cfg TFIDFConfig) *TFIDF {
	def := DefaultTFIDFConfig()
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = def.MaxFeatures
	}
	if cfg.MinN <= 0 {
		cfg.MinN = def.MinN
	}
	if cfg.MaxN < cfg.MinN {
		cfg.MaxN = max(cfg.MinN, def.MaxN)
	}
	if cfg.StopWords == nil {
		cfg.StopWords = EnglishStopWords
	}
	return &TFIDF{config: cfg}
}

// Analyze lowercases doc, extracts tokens, drops stop words and returns the
// configured n-grams joined by a single space.
func (t *TFIDF) Analyze(doc string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := t.config.StopWords[tok]; !stop {
			tokens = append(tokens, tok)
		}
	}

	var terms []string
	for n := t.config.MinN; n <= t.config.MaxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// FitTransform learns the vocabulary and IDF weights of docs and returns
// the vectorized corpus.
func (t *TFIDF) FitTransform(docs []string) (*TFIDFModel, error) {
	counts := make([]map[string]int, len(docs))
	corpusFreq := make(map[string]int)
	for d, doc := range docs {
		tc := make(map[string]int)
		for _, term := range t.Analyze(doc) {
			tc[term]++
			corpusFreq[term]++
		}
		counts[d] = tc
	}
	if len(corpusFreq) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocab := make([]string, 0, len(corpusFreq))
	for term := range corpusFreq {
		vocab = append(vocab, term)
	}
	if len(vocab) > t.config.MaxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			if corpusFreq[vocab[i]] != corpusFreq[vocab[j]] {
				return corpusFreq[vocab[i]] > corpusFreq[vocab[j]]
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:t.config.MaxFeatures]
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}

	df := make([]int, len(vocab))
	for _, tc := range counts {
		for term := range tc {
			if col, ok := index[term]; ok {
				df[col]++
			}
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for col := range idf {
		idf[col] = math.Log((1+n)/(1+float64(df[col]))) + 1
	}

	rows := make([]SparseVector, len(docs))
	for d, tc := range counts {
		var vec SparseVector
		for term := range tc {
			if col, ok := index[term]; ok {
				vec.Indices = append(vec.Indices, col)
			}
		}
		sort.Ints(vec.Indices)
		vec.Values = make([]float64, len(vec.Indices))
		for i, col := range vec.Indices {
			vec.Values[i] = float64(tc[vocab[col]]) * idf[col]
		}
		if norm := vec.Norm(); norm > 0 {
			for i := range vec.Values {
				vec.Values[i] /= norm
			}
		}
		rows[d] = vec
	}

	return &TFIDFModel{Vocabulary: vocab, IDF: idf, Rows: rows}, nil
}

// Cosine returns the cosine similarity of a and b, or 0 if either is zero.
func Cosine(a, b SparseVector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

// CosineMatrix returns the symmetric pairwise cosine similarity of rows.
func CosineMatrix(rows []SparseVector, workers int) [][]float64 {
	n := len(rows)
	norms := make([]float64, n)
	for i, r := range rows {
		norms[i] = r.Norm()
	}

	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}

	parallelFor(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < n; j++ {
				if norms[i] == 0 || norms[j] == 0 {
					continue
				}
				sim[i][j] = rows[i].Dot(rows[j]) / (norms[i] * norms[j])
			}
		}
	})
	return sim
}
