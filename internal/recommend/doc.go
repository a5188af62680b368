// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package recommend turns user interactions into ranked artist recommendations.
//
// # Architecture
//
// Three scoring engines feed one hybrid scorer:
//
//   - MatrixBuilder: stated favorites and logged events become a user x item
//     affinity matrix (favorites 5.0, favorite genres 3.0 on genre_<g>
//     pseudo-items, views +0.5, clicks and positive feedback +1.0, searches
//     +0.2 on search_<q> pseudo-items), support-filtered before training.
//   - CollaborativeEngine: NMF latent factors predict affinity for items a
//     user has not touched.
//   - ContentEngine: TF-IDF vectors over genre, language, popularity and
//     follower tokens, with a precomputed cosine similarity matrix.
//   - Hybrid: content x 0.4 + collaborative x 0.3 + 0.2 per predicted genre
//     + 0.1 for a predicted language. The weights are fixed constants, not a
//     probability distribution.
//
// Genre and language predictions come from package prediction through the
// Predictor interface so this package stays free of behavior analytics.
//
// # Snapshots
//
// Both model caches are immutable snapshots published through atomic
// pointers. A rebuild holds a per-engine mutex, builds a complete snapshot
// and swaps it in. Readers never observe a partially built model. Neither
// cache invalidates itself; the rebuild service or the caller decides when.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	builder := recommend.NewMatrixBuilder(interactions, prefs, cfg.Matrix, logger)
//	collab := recommend.NewCollaborativeEngine(builder, cfg.Factorization, logger)
//	content := recommend.NewContentEngine(cfg.Content, logger)
//	hybrid := recommend.NewHybrid(content, collab, predictor, prefs, cfg, logger)
//
//	res, err := hybrid.Recommend(ctx, recommend.HybridRequest{
//	    UserID:  userID,
//	    Catalog: catalog,
//	    Limit:   10,
//	})
//
// # Failure Handling
//
// Missing data is never an error: unknown users, empty matrices and empty
// catalogs produce empty results. Engine failures are returned so callers can
// inspect them, but Hybrid keeps blending the signals that did succeed and
// names the failed ones in HybridResult.Degraded.
package recommend
