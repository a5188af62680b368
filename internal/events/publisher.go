// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/recommend"
)

// Publisher serializes recommendation activity onto the bus.
type Publisher struct {
	pub    message.Publisher
	logger zerolog.Logger
}

// NewPublisher creates a Publisher over pub.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublisher(pub message.Publisher, logger zerolog.Logger) *Publisher {
	return &Publisher{
		pub:    pub,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// PublishGenerated announces a served recommendation list.
//
//nolint:gocritic // hugeParam: ev passed by value for immutability
func (p *Publisher) PublishGenerated(ctx context.Context, ev Generated) error {
	return p.publish(ctx, TopicGenerated, ev.UserID, ev)
}

// PublishFeedback announces stored feedback.
//
//nolint:gocritic // hugeParam: rec passed by value for immutability
func (p *Publisher) PublishFeedback(ctx context.Context, rec recommend.FeedbackRecord) error {
	return p.publish(ctx, TopicFeedback, rec.UserID, rec)
}

func (p *Publisher) publish(ctx context.Context, topic, userID string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}

	msg := message.NewMessage(uuid.NewString(), body)
	msg.Metadata.Set(MetadataUserID, userID)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataRequestID, id)
	}
	msg.SetContext(ctx)

	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.logger.Debug().Str("topic", topic).Str("message_uuid", msg.UUID).Str("user_id", userID).Msg("event published")
	return nil
}
