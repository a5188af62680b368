// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package behavior

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/validation"
)

var (
	// ErrInvalidEvent is returned when a payload fails validation.
	ErrInvalidEvent = errors.New("invalid interaction event")

	// ErrStore is returned when the interaction store fails.
	ErrStore = errors.New("interaction store failure")
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the time source.
func WithClock(clock recommend.Clock) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.now = clock
		}
	}
}

// Tracker records interactions and computes behavior summaries.
type Tracker struct {
	store  recommend.InteractionStore
	config recommend.BehaviorConfig
	logger zerolog.Logger
	now    recommend.Clock
	fold   cases.Caser
}

// NewTracker creates a Tracker over store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTracker(store recommend.InteractionStore, cfg recommend.BehaviorConfig, logger zerolog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		config: cfg,
		logger: logger.With().Str("component", "behavior").Logger(),
		now:    time.Now,
		fold:   cases.Lower(language.Und),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record validates payload and appends it to the interaction log.
// An empty sessionID is stored as "unknown".
func (t *Tracker) Record(ctx context.Context, userID string, payload recommend.Payload, sessionID string) (recommend.InteractionEvent, error) {
	logger := logging.FromContext(ctx, t.logger)

	if payload == nil {
		metrics.InteractionsRejected.WithLabelValues("unknown", "nil_payload").Inc()
		return recommend.InteractionEvent{}, fmt.Errorf("%w: missing payload", ErrInvalidEvent)
	}
	action := payload.Kind()
	if strings.TrimSpace(userID) == "" {
		metrics.InteractionsRejected.WithLabelValues(string(action), "missing_user").Inc()
		return recommend.InteractionEvent{}, fmt.Errorf("%w: user_id is required", ErrInvalidEvent)
	}
	if err := validation.Struct(payload); err != nil {
		metrics.InteractionsRejected.WithLabelValues(string(action), "validation").Inc()
		logger.Debug().Err(err).Str("action", string(action)).Msg("rejected interaction")
		return recommend.InteractionEvent{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	if strings.TrimSpace(sessionID) == "" {
		sessionID = recommend.UnknownSession
	}
	ev := recommend.InteractionEvent{
		UserID:    userID,
		Action:    action,
		Payload:   recommend.NormalizePayload(payload),
		Timestamp: recommend.FormatTimestamp(t.now()),
		SessionID: sessionID,
	}

	if err := t.store.Append(ctx, ev); err != nil {
		metrics.RecordStoreError("interactions", "append")
		logger.Error().Err(err).Str("action", string(action)).Str("user_id", userID).Msg("failed to store interaction")
		return ev, fmt.Errorf("%w: %w", ErrStore, err)
	}

	metrics.InteractionsRecorded.WithLabelValues(string(action)).Inc()
	logger.Debug().Str("action", string(action)).Str("user_id", userID).Str("session_id", sessionID).Msg("interaction recorded")
	return ev, nil
}

// Summarize aggregates the user's events from the last windowDays days.
// windowDays <= 0 uses the configured default. A store failure returns a
// zero summary together with the wrapped error.
func (t *Tracker) Summarize(ctx context.Context, userID string, windowDays int) (recommend.BehaviorSummary, error) {
	if windowDays <= 0 {
		windowDays = t.config.WindowDays
	}
	summary := recommend.NewBehaviorSummary(windowDays)

	events, err := t.store.Query(ctx, userID, t.config.QueryLimit)
	if err != nil {
		metrics.RecordStoreError("interactions", "query")
		logging.FromContext(ctx, t.logger).Error().Err(err).Str("user_id", userID).Msg("failed to load interactions")
		return summary, fmt.Errorf("%w: %w", ErrStore, err)
	}

	now := t.now()
	t.aggregate(&summary, events, now, now.AddDate(0, 0, -windowDays))
	return summary, nil
}

type sessionSpan struct {
	first, last time.Time
}

func (t *Tracker) aggregate(s *recommend.BehaviorSummary, events []recommend.InteractionEvent, now, since time.Time) {
	sessions := make(map[string]*sessionSpan)
	var clicks int

	for i := range events {
		ev := &events[i]
		ts, ok := ev.Time(now)
		if ok && ts.Before(since) {
			continue
		}
		s.TotalInteractions++

		if ev.Payload != nil && ev.Payload.Kind().Discovery() {
			clicks++
		}
		switch p := recommend.NormalizePayload(ev.Payload).(type) {
		case *recommend.SearchPayload:
			s.SearchTerms[t.fold.String(p.Query)]++
		case *recommend.ArtistViewPayload:
			s.Artists[p.ArtistName]++
			s.Languages[p.Lang()]++
			for _, g := range p.Genres {
				s.Genres[g]++
			}
		}

		s.ListeningHours = append(s.ListeningHours, ts.Hour())

		session := ev.SessionID
		if session == "" {
			session = recommend.UnknownSession
		}
		span, seen := sessions[session]
		if !seen {
			sessions[session] = &sessionSpan{first: ts, last: ts}
			continue
		}
		if ts.Before(span.first) {
			span.first = ts
		}
		if ts.After(span.last) {
			span.last = ts
		}
	}

	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		span := sessions[id]
		s.SessionDurations = append(s.SessionDurations, span.last.Sub(span.first).Minutes())
	}

	if s.TotalInteractions > 0 {
		s.DiscoveryRate = float64(clicks) / float64(s.TotalInteractions)
	}
}
