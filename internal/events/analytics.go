// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package events

import (
	"fmt"
	"maps"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/metrics"
)

// Stats is a point-in-time copy of the analytics counters.
type Stats struct {
	Generated        int            `json:"generated"`
	ServedItems      int            `json:"served_items"`
	CachedResponses  int            `json:"cached_responses"`
	DegradedByEngine map[string]int `json:"degraded_by_engine"`
	FeedbackByKind   map[string]int `json:"feedback_by_kind"`
	ActiveUsers      int            `json:"active_users"`
	Malformed        int            `json:"malformed"`
}

// Analytics consumes recommendation events and aggregates them in memory.
type Analytics struct {
	logger zerolog.Logger

	mu               sync.Mutex
	generated        int
	servedItems      int
	cached           int
	degradedByEngine map[string]int
	feedbackByKind   map[string]int
	users            map[string]struct{}
	malformed        int
}

// NewAnalytics creates an empty consumer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAnalytics(logger zerolog.Logger) *Analytics {
	return &Analytics{
		logger:           logger.With().Str("component", "analytics").Logger(),
		degradedByEngine: make(map[string]int),
		feedbackByKind:   make(map[string]int),
		users:            make(map[string]struct{}),
	}
}

// Register subscribes the consumer's handlers on r.
func (a *Analytics) Register(r *Router, sub message.Subscriber) {
	r.AddConsumerHandler("analytics_generated", TopicGenerated, sub, a.HandleGenerated)
	r.AddConsumerHandler("analytics_feedback", TopicFeedback, sub, a.HandleFeedback)
}

// HandleGenerated folds one recommendation.generated message. Malformed
// messages are counted and acknowledged; retrying cannot fix them.
func (a *Analytics) HandleGenerated(msg *message.Message) error {
	metrics.EventsConsumed.WithLabelValues(TopicGenerated).Inc()

	var ev Generated
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		a.malformedMessage(TopicGenerated, msg, err)
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.generated++
	a.servedItems += ev.Count
	if ev.Cached {
		a.cached++
	}
	for _, engine := range ev.Degraded {
		a.degradedByEngine[engine]++
	}
	if ev.UserID != "" {
		a.users[ev.UserID] = struct{}{}
	}
	return nil
}

// HandleFeedback folds one recommendation.feedback message.
func (a *Analytics) HandleFeedback(msg *message.Message) error {
	metrics.EventsConsumed.WithLabelValues(TopicFeedback).Inc()

	var rec Feedback
	if err := json.Unmarshal(msg.Payload, &rec); err != nil {
		a.malformedMessage(TopicFeedback, msg, err)
		return nil
	}
	if rec.Feedback == "" {
		a.malformedMessage(TopicFeedback, msg, fmt.Errorf("missing feedback kind"))
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.feedbackByKind[string(rec.Feedback)]++
	if rec.UserID != "" {
		a.users[rec.UserID] = struct{}{}
	}
	return nil
}

func (a *Analytics) malformedMessage(topic string, msg *message.Message, err error) {
	a.mu.Lock()
	a.malformed++
	a.mu.Unlock()
	a.logger.Warn().Err(err).Str("topic", topic).Str("message_uuid", msg.UUID).Msg("dropping malformed event")
}

// Stats returns a copy of the counters.
func (a *Analytics) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		Generated:        a.generated,
		ServedItems:      a.servedItems,
		CachedResponses:  a.cached,
		DegradedByEngine: maps.Clone(a.degradedByEngine),
		FeedbackByKind:   maps.Clone(a.feedbackByKind),
		ActiveUsers:      len(a.users),
		Malformed:        a.malformed,
	}
}
