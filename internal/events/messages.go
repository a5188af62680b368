// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package events

import (
	"github.com/tomtom215/cadence/internal/recommend"
)

// Topics.
const (
	TopicGenerated = "recommendation.generated"
	TopicFeedback  = "recommendation.feedback"
)

// Message metadata keys.
const (
	MetadataUserID    = "user_id"
	MetadataRequestID = "request_id"
)

// Generated describes a served hybrid list.
type Generated struct {
	UserID         string   `json:"user_id"`
	Method         string   `json:"method"`
	Count          int      `json:"count"`
	TotalAvailable int      `json:"total_available"`
	LanguageFilter string   `json:"language_filter,omitempty"`
	Degraded       []string `json:"degraded,omitempty"`
	ArtistIDs      []string `json:"artist_ids"`
	Cached         bool     `json:"cached"`
	Timestamp      string   `json:"timestamp"`
}

// Feedback is the payload of TopicFeedback.
type Feedback = recommend.FeedbackRecord
