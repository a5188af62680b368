// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package behavior records user interactions and summarizes recent activity.
//
// The Tracker is the only writer of the interaction log. Every payload is
// validated before it is stored, and a store outage is reported to the
// caller without panicking so request paths can choose to ignore it.
//
// Summaries are windowed client-side: the store returns the user's newest
// QueryLimit events, oldest first, and the tracker drops events older than
// the window. Timestamps that cannot be parsed count as "now".
package behavior
