// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package reranking reorders a finished recommendation list.
//
// MMR trades relevance against genre diversity so a list is not dominated by
// one genre. It never adds, drops or rescores items. The service applies it
// to hybrid results when recommend.DiversityConfig.Enabled is set; the
// default is off and hybrid lists stay ordered by score.
//
//	mmr := reranking.NewMMR(0.7)
//	res.Items = mmr.Rerank(res.Items, len(res.Items))
package reranking
