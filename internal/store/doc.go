// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package store groups the persistence adapters behind the recommend store
// interfaces.
//
//   - memory: process-local stores, the default backend and the test double
//   - mongostore: MongoDB collections (user_interactions, user_preferences,
//     recommendation_feedback)
//   - resilient: circuit breaker decorators for any backend
//
// Open builds the configured backend.
package store
