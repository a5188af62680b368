// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package feedback records user reactions to served recommendations.
//
// A feedback submission is stored as a FeedbackRecord, mirrored into the
// interaction log as a recommendation_feedback event so the matrix builder
// and behavior summaries see it, and announced on the event bus.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/validation"
)

var (
	// ErrInvalidFeedback is returned when a submission fails validation.
	ErrInvalidFeedback = errors.New("invalid feedback")

	// ErrStore is returned when the feedback store fails.
	ErrStore = errors.New("feedback store failure")
)

// Input is one feedback submission.
type Input struct {
	UserID           string                 `json:"user_id" validate:"notblank,max=128"`
	RecommendationID string                 `json:"recommendation_id" validate:"max=128"`
	Feedback         recommend.FeedbackKind `json:"feedback" validate:"required,oneof=like dislike save skip"`
	Artist           recommend.Artist       `json:"artist_data"`
	SessionID        string                 `json:"session_id,omitempty" validate:"max=128"`
}

// Tracker appends interaction events.
type Tracker interface {
	Record(ctx context.Context, userID string, payload recommend.Payload, sessionID string) (recommend.InteractionEvent, error)
}

// Publisher announces stored feedback.
type Publisher interface {
	PublishFeedback(ctx context.Context, rec recommend.FeedbackRecord) error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock replaces the time source.
func WithClock(clock recommend.Clock) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.now = clock
		}
	}
}

// WithPublisher announces every stored record on p.
func WithPublisher(p Publisher) Option {
	return func(r *Recorder) { r.publisher = p }
}

// Recorder stores feedback and mirrors it into the interaction log.
type Recorder struct {
	store     recommend.FeedbackStore
	tracker   Tracker
	publisher Publisher
	logger    zerolog.Logger
	now       recommend.Clock
}

// NewRecorder creates a Recorder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecorder(store recommend.FeedbackStore, tracker Tracker, logger zerolog.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		store:   store,
		tracker: tracker,
		logger:  logger.With().Str("component", "feedback").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record validates and stores in. Once the record is saved the call
// succeeds; tracking and publishing failures are logged and counted only.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func (r *Recorder) Record(ctx context.Context, in Input) (recommend.FeedbackRecord, error) {
	logger := logging.FromContext(ctx, r.logger)

	if err := validation.Struct(in); err != nil {
		return recommend.FeedbackRecord{}, fmt.Errorf("%w: %w", ErrInvalidFeedback, err)
	}
	if strings.TrimSpace(in.Artist.Name) == "" && strings.TrimSpace(in.Artist.ID) == "" {
		return recommend.FeedbackRecord{}, fmt.Errorf("%w: artist_data requires a name or id", ErrInvalidFeedback)
	}

	rec := recommend.FeedbackRecord{
		ID:               uuid.NewString(),
		UserID:           in.UserID,
		RecommendationID: in.RecommendationID,
		Feedback:         in.Feedback,
		Artist:           in.Artist,
		Timestamp:        recommend.FormatTimestamp(r.now()),
	}
	if err := r.store.Save(ctx, rec); err != nil {
		metrics.RecordStoreError("feedback", "save")
		logger.Error().Err(err).Str("user_id", in.UserID).Msg("failed to store feedback")
		return recommend.FeedbackRecord{}, fmt.Errorf("%w: %w", ErrStore, err)
	}
	metrics.FeedbackRecorded.WithLabelValues(string(in.Feedback)).Inc()

	payload := &recommend.FeedbackPayload{
		RecommendationID: in.RecommendationID,
		Feedback:         in.Feedback,
		ArtistName:       in.Artist.Name,
		Genres:           in.Artist.Genres,
		Language:         in.Artist.Lang(),
	}
	if _, err := r.tracker.Record(ctx, in.UserID, payload, in.SessionID); err != nil {
		logger.Warn().Err(err).Str("feedback_id", rec.ID).Msg("failed to mirror feedback into interaction log")
	}

	if r.publisher != nil {
		if err := r.publisher.PublishFeedback(ctx, rec); err != nil {
			logger.Warn().Err(err).Str("feedback_id", rec.ID).Msg("failed to publish feedback")
		}
	}

	logger.Info().
		Str("user_id", in.UserID).
		Str("feedback", string(in.Feedback)).
		Str("artist", in.Artist.Name).
		Msg("recommendation feedback recorded")
	return rec, nil
}
