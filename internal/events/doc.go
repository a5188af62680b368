// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package events carries recommendation activity over an in-process
// Watermill bus.
//
// Two topics are published:
//
//   - recommendation.generated: a hybrid list was served
//   - recommendation.feedback: a user reacted to a recommendation
//
// The Analytics consumer subscribes to both through a Router configured with
// panic recovery and exponential backoff retry, and keeps running counters
// that the metrics HTTP service exposes at /stats.
//
// Publishing is fire-and-forget from the caller's point of view: a publish
// failure is returned so callers can log it, but never undoes the work that
// produced the event.
package events
