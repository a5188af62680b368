// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package behavior

import (
	"fmt"

	"github.com/tomtom215/cadence/internal/recommend"
)

// Discovery tiers used by Insights.
const (
	ExplorerRate = 0.3
	BalancedRate = 0.1
)

// Insights turns a summary into short human-readable observations.
//
//nolint:gocritic // hugeParam: summary is read-only
func Insights(s recommend.BehaviorSummary) []string {
	var out []string
	if s.TotalInteractions > 0 {
		out = append(out, fmt.Sprintf("You've had %d interactions in the last %d days", s.TotalInteractions, s.WindowDays))
	}

	switch {
	case s.DiscoveryRate > ExplorerRate:
		out = append(out, "You have a high discovery rate - you're great at finding new music!")
	case s.DiscoveryRate > BalancedRate:
		out = append(out, "You occasionally discover new music - try our recommendations!")
	default:
		out = append(out, "You stick to familiar music - we can help you discover new artists!")
	}

	if g, ok := TopGenre(s.Genres); ok {
		out = append(out, "Your most explored genre is "+g)
	}
	return out
}

// TopGenre returns the most frequent genre. Ties go to the alphabetically
// first name.
func TopGenre(genres map[string]int) (string, bool) {
	var best string
	var bestCount int
	for g, c := range genres {
		if c > bestCount || (c == bestCount && g < best) {
			best, bestCount = g, c
		}
	}
	return best, bestCount > 0
}
