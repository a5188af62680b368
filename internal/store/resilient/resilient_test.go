// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package resilient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/store/memory"
)

var errDown = errors.New("backend down")

type flakyInteractions struct {
	recommend.InteractionStore
	calls int
	err   error
}

func (f *flakyInteractions) Append(ctx context.Context, ev recommend.InteractionEvent) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return f.InteractionStore.Append(ctx, ev)
}

func testConfig() Config {
	return Config{MaxRequests: 1, Interval: time.Minute, Timeout: time.Hour, FailureThreshold: 3}
}

func TestInteractionsTripAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	inner := &flakyInteractions{InteractionStore: memory.NewInteractions(), err: errDown}
	s := NewInteractions(inner, testConfig(), zerolog.Nop())

	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, recommend.InteractionEvent{}); !errors.Is(err, errDown) {
			t.Fatalf("call %d: err = %v, want errDown", i, err)
		}
	}
	if s.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", s.State())
	}

	err := s.Append(ctx, recommend.InteractionEvent{})
	if !errors.Is(err, ErrOpen) {
		t.Errorf("err = %v, want ErrOpen", err)
	}
	if inner.calls != 3 {
		t.Errorf("inner called %d times, want 3", inner.calls)
	}
}

func TestInteractionsPassThrough(t *testing.T) {
	ctx := context.Background()
	s := NewInteractions(memory.NewInteractions(), testConfig(), zerolog.Nop())
	if err := s.Append(ctx, recommend.InteractionEvent{UserID: "u"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Query(ctx, "u", 10)
	if err != nil || len(got) != 1 {
		t.Errorf("Query = %v, %v", got, err)
	}
	all, err := s.All(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("All = %v, %v", all, err)
	}
}

func TestPreferencesNotFoundDoesNotTrip(t *testing.T) {
	ctx := context.Background()
	s := NewPreferences(memory.NewPreferences(), testConfig(), zerolog.Nop())

	for i := 0; i < 10; i++ {
		if _, err := s.Get(ctx, "missing"); !errors.Is(err, recommend.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	}
	if s.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", s.State())
	}

	if err := s.Set(ctx, recommend.Preferences{UserID: "u", FavoriteGenres: []string{"jazz"}}); err != nil {
		t.Fatal(err)
	}
	p, err := s.Get(ctx, "u")
	if err != nil || p.FavoriteGenres[0] != "jazz" {
		t.Errorf("Get = %+v, %v", p, err)
	}
}

func TestCanceledContextDoesNotTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewFeedback(memory.NewFeedback(), testConfig(), zerolog.Nop())
	for i := 0; i < 5; i++ {
		_ = s.Save(ctx, recommend.FeedbackRecord{})
	}
	if s.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", s.State())
	}
}
