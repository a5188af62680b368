// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package service is the single entry point to the recommendation core.
//
// It wires the behavior tracker, the matrix builder, the collaborative,
// content and prediction engines, the hybrid scorer and the feedback
// recorder over one set of stores, and exposes the operations callers use:
//
//   - TrackInteraction / TrackRawInteraction
//   - GetBehaviorSummary / GetBehaviorInsights
//   - GetCollaborativeRecommendations / RebuildCollaborative
//   - GetContentRecommendations / BuildContentFeatures
//   - PredictUserPreferences
//   - GetHybridRecommendations
//   - RecordFeedback
//   - GetPreferences / UpdatePreferences
//
// # Caching
//
// Hybrid results are cached per user in an LRU with TTL. The key includes
// the catalog fingerprint, the clamped limit and the language filter, so a
// changed catalog never hits a stale entry. Any interaction, feedback or
// preference change for a user drops that user's entries; a collaborative
// rebuild drops all of them. Results that degraded because an engine failed
// are never cached.
//
// # Diversity
//
// With recommend.DiversityConfig.Enabled, fresh hybrid lists are reordered
// by reranking.MMR before they are cached. Items and scores are unchanged.
//
// # Events
//
// With a Publisher, every served hybrid list is announced on
// recommendation.generated and every stored feedback on
// recommendation.feedback. Publishing is best effort and never fails the
// operation.
package service
