// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package algorithms contains the numeric kernels behind Cadence scoring:
// dense affinity matrices with support filtering, non-negative matrix
// factorization, TF-IDF vectorization and cosine similarity.
//
// The package knows nothing about users, artists or events. Callers in
// package recommend translate domain data into matrices and documents and
// interpret the results.
//
// # Determinism
//
// Every kernel is deterministic for fixed inputs. NMF seeds its own random
// source, TF-IDF breaks vocabulary ties alphabetically, and parallel loops
// partition work so each output cell is written by exactly one goroutine.
//
// # Thread Safety
//
// Results (Matrix, Factorization, TFIDFModel) are immutable once returned
// and may be shared between goroutines without locking.
package algorithms
