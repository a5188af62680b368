// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package mongostore

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tomtom215/cadence/internal/recommend"
)

func TestEncodeEventStoresPayloadUnderData(t *testing.T) {
	ev := recommend.InteractionEvent{
		UserID:    "u1",
		Action:    recommend.ActionArtistView,
		Payload:   recommend.ArtistViewPayload{ArtistName: "Alpha", Genres: []string{"indie"}},
		Timestamp: "2026-03-10T12:00:00Z",
		SessionID: "s1",
	}
	doc, err := encodeEvent(&ev)
	if err != nil {
		t.Fatal(err)
	}
	if doc.UserID != "u1" || doc.Action != "artist_view" || doc.SessionID != "s1" {
		t.Errorf("header fields = %+v", doc)
	}
	name, ok := doc.Data.Lookup("artist_name").StringValueOK()
	if !ok || name != "Alpha" {
		t.Errorf("data.artist_name = %q, %v", name, ok)
	}

	got, err := decodeEvent(doc)
	if err != nil {
		t.Fatal(err)
	}
	view, ok := got.Payload.(*recommend.ArtistViewPayload)
	if !ok {
		t.Fatalf("payload type = %T", got.Payload)
	}
	if view.ArtistName != "Alpha" || len(view.Genres) != 1 {
		t.Errorf("payload = %+v", view)
	}
}

func TestDecodeEventTolerance(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"query": "jazz"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		doc         interactionDoc
		wantPayload bool
		wantErr     error
	}{
		{"no data", interactionDoc{UserID: "u", Action: "search"}, false, nil},
		{"unknown action", interactionDoc{UserID: "u", Action: "played", Data: raw}, false, recommend.ErrUnknownAction},
		{"search", interactionDoc{UserID: "u", Action: "search", Data: raw}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeEvent(&tt.doc)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected err: %v", err)
			}
			if ev.UserID != "u" {
				t.Errorf("UserID = %q; the event must survive payload errors", ev.UserID)
			}
			if (ev.Payload != nil) != tt.wantPayload {
				t.Errorf("payload = %v, want present=%v", ev.Payload, tt.wantPayload)
			}
		})
	}
}
