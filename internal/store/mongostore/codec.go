// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package mongostore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tomtom215/cadence/internal/recommend"
)

// interactionDoc is the stored shape of an InteractionEvent.
type interactionDoc struct {
	UserID    string   `bson:"user_id"`
	Action    string   `bson:"action"`
	Data      bson.Raw `bson:"data,omitempty"`
	Timestamp string   `bson:"timestamp"`
	SessionID string   `bson:"session_id"`
}

func encodeEvent(ev *recommend.InteractionEvent) (*interactionDoc, error) {
	doc := &interactionDoc{
		UserID:    ev.UserID,
		Action:    string(ev.Action),
		Timestamp: ev.Timestamp,
		SessionID: ev.SessionID,
	}
	if ev.Payload != nil {
		raw, err := bson.Marshal(recommend.NormalizePayload(ev.Payload))
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", ev.Action, err)
		}
		doc.Data = raw
	}
	return doc, nil
}

// decodeEvent always returns the event. When the payload cannot be read the
// event carries a nil Payload together with the error.
func decodeEvent(doc *interactionDoc) (recommend.InteractionEvent, error) {
	ev := recommend.InteractionEvent{
		UserID:    doc.UserID,
		Action:    recommend.ActionKind(doc.Action),
		Timestamp: doc.Timestamp,
		SessionID: doc.SessionID,
	}
	if len(doc.Data) == 0 {
		return ev, nil
	}
	p, err := recommend.NewPayload(ev.Action)
	if err != nil {
		return ev, err
	}
	if err := bson.Unmarshal(doc.Data, p); err != nil {
		return ev, fmt.Errorf("decode %s payload: %w", ev.Action, err)
	}
	ev.Payload = p
	return ev, nil
}
