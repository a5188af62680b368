// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ActionKind identifies the kind of interaction an event records.
type ActionKind string

const (
	ActionSearch                   ActionKind = "search"
	ActionArtistView               ActionKind = "artist_view"
	ActionRecommendationClick      ActionKind = "recommendation_click"
	ActionRecommendationFeedback   ActionKind = "recommendation_feedback"
	ActionRecommendationsGenerated ActionKind = "recommendations_generated"
)

// Valid reports whether k has a payload schema.
func (k ActionKind) Valid() bool {
	_, ok := payloadFactories[k]
	return ok
}

// Discovery reports whether events of this kind count toward the discovery rate.
func (k ActionKind) Discovery() bool {
	return k == ActionRecommendationClick
}

// Payload is the typed body of an InteractionEvent. Each action kind has
// exactly one payload type.
type Payload interface {
	Kind() ActionKind
}

// SearchPayload records a catalog search.
type SearchPayload struct {
	Query    string `json:"query" bson:"query" validate:"notblank,max=200"`
	Language string `json:"language,omitempty" bson:"language,omitempty" validate:"max=50"`
	Market   string `json:"market,omitempty" bson:"market,omitempty" validate:"max=10"`
}

// Kind implements Payload.
func (SearchPayload) Kind() ActionKind { return ActionSearch }

// ArtistViewPayload records that a user opened an artist.
type ArtistViewPayload struct {
	ArtistID   string   `json:"artist_id,omitempty" bson:"artist_id,omitempty"`
	ArtistName string   `json:"artist_name" bson:"artist_name" validate:"notblank,max=200"`
	Genres     []string `json:"genres,omitempty" bson:"genres,omitempty" validate:"max=50,dive,notblank"`
	Language   string   `json:"language,omitempty" bson:"language,omitempty" validate:"max=50"`
	Popularity int      `json:"popularity,omitempty" bson:"popularity,omitempty" validate:"gte=0,lte=100"`
}

// Kind implements Payload.
func (ArtistViewPayload) Kind() ActionKind { return ActionArtistView }

// Lang returns the viewed artist's language, or DefaultLanguage.
func (p *ArtistViewPayload) Lang() string {
	if p.Language == "" {
		return DefaultLanguage
	}
	return p.Language
}

// RecommendationClickPayload records a click on a recommended artist.
type RecommendationClickPayload struct {
	ArtistID   string `json:"artist_id,omitempty" bson:"artist_id,omitempty"`
	ArtistName string `json:"artist_name" bson:"artist_name" validate:"notblank,max=200"`
	Position   int    `json:"position,omitempty" bson:"position,omitempty" validate:"gte=0"`
}

// Kind implements Payload.
func (RecommendationClickPayload) Kind() ActionKind { return ActionRecommendationClick }

// FeedbackPayload is the denormalized copy of a FeedbackRecord written to the
// interaction log so behavior and matrix builders need no catalog lookup.
type FeedbackPayload struct {
	RecommendationID string       `json:"recommendation_id,omitempty" bson:"recommendation_id,omitempty"`
	Feedback         FeedbackKind `json:"feedback" bson:"feedback" validate:"required,oneof=like dislike save skip"`
	ArtistName       string       `json:"artist_name" bson:"artist_name" validate:"max=200"`
	Genres           []string     `json:"genres,omitempty" bson:"genres,omitempty"`
	Language         string       `json:"language,omitempty" bson:"language,omitempty"`
}

// Kind implements Payload.
func (FeedbackPayload) Kind() ActionKind { return ActionRecommendationFeedback }

// RecommendationsGeneratedPayload records that a hybrid list was served.
type RecommendationsGeneratedPayload struct {
	Method         string `json:"method" bson:"method" validate:"notblank"`
	Count          int    `json:"count" bson:"count" validate:"gte=0"`
	TotalAvailable int    `json:"total_available" bson:"total_available" validate:"gte=0"`
	LanguageFilter string `json:"language_filter,omitempty" bson:"language_filter,omitempty"`
}

// Kind implements Payload.
func (RecommendationsGeneratedPayload) Kind() ActionKind { return ActionRecommendationsGenerated }

var payloadFactories = map[ActionKind]func() Payload{
	ActionSearch:                   func() Payload { return &SearchPayload{} },
	ActionArtistView:               func() Payload { return &ArtistViewPayload{} },
	ActionRecommendationClick:      func() Payload { return &RecommendationClickPayload{} },
	ActionRecommendationFeedback:   func() Payload { return &FeedbackPayload{} },
	ActionRecommendationsGenerated: func() Payload { return &RecommendationsGeneratedPayload{} },
}

// NewPayload returns a zero payload pointer for kind.
func NewPayload(kind ActionKind) (Payload, error) {
	f, ok := payloadFactories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
	return f(), nil
}

// EncodePayload serializes p as a JSON object.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// DecodePayload parses data into the payload type registered for kind.
func DecodePayload(kind ActionKind, data []byte) (Payload, error) {
	p, err := NewPayload(kind)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return p, nil
}

type eventEnvelope struct {
	UserID    string          `json:"user_id"`
	Action    ActionKind      `json:"action"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
	SessionID string          `json:"session_id"`
}

// MarshalJSON writes the event with its payload under "data".
//
//nolint:gocritic // value receiver so both values and pointers marshal
func (e InteractionEvent) MarshalJSON() ([]byte, error) {
	data, err := EncodePayload(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventEnvelope{
		UserID:    e.UserID,
		Action:    e.Action,
		Data:      data,
		Timestamp: e.Timestamp,
		SessionID: e.SessionID,
	})
}

// UnmarshalJSON reads an event written by MarshalJSON.
func (e *InteractionEvent) UnmarshalJSON(b []byte) error {
	var env eventEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	p, err := DecodePayload(env.Action, env.Data)
	if err != nil {
		return err
	}
	*e = InteractionEvent{
		UserID:    env.UserID,
		Action:    env.Action,
		Payload:   p,
		Timestamp: env.Timestamp,
		SessionID: env.SessionID,
	}
	return nil
}

// NormalizePayload returns the pointer form of p so callers can type switch
// on pointer types only.
func NormalizePayload(p Payload) Payload {
	switch v := p.(type) {
	case SearchPayload:
		return &v
	case ArtistViewPayload:
		return &v
	case RecommendationClickPayload:
		return &v
	case FeedbackPayload:
		return &v
	case RecommendationsGeneratedPayload:
		return &v
	}
	return p
}
