// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/tomtom215/cadence/internal/recommend"
)

func TestInteractionsQuery(t *testing.T) {
	ctx := context.Background()
	s := NewInteractions()
	for i := 0; i < 5; i++ {
		user := "a"
		if i%2 == 1 {
			user = "b"
		}
		ev := recommend.InteractionEvent{UserID: user, Action: recommend.ActionSearch, Payload: &recommend.SearchPayload{Query: fmt.Sprint(i)}}
		if err := s.Append(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		user  string
		limit int
		want  []string
	}{
		{"a", 0, []string{"0", "2", "4"}},
		{"a", 2, []string{"2", "4"}},
		{"a", 1, []string{"4"}},
		{"b", 10, []string{"1", "3"}},
		{"c", 10, nil},
	}
	for _, tt := range tests {
		got, err := s.Query(ctx, tt.user, tt.limit)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("Query(%s, %d) = %d events, want %d", tt.user, tt.limit, len(got), len(tt.want))
		}
		for i, ev := range got {
			if q := ev.Payload.(*recommend.SearchPayload).Query; q != tt.want[i] {
				t.Errorf("Query(%s)[%d] = %s, want %s", tt.user, i, q, tt.want[i])
			}
		}
	}

	all, _ := s.All(ctx)
	if len(all) != 5 || s.Len() != 5 {
		t.Errorf("All = %d, Len = %d, want 5", len(all), s.Len())
	}
}

func TestInteractionsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewInteractions().Append(ctx, recommend.InteractionEvent{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Append = %v, want context.Canceled", err)
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	s := NewPreferences()

	if _, err := s.Get(ctx, "u"); !errors.Is(err, recommend.ErrNotFound) {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}

	genres := []string{"jazz"}
	_ = s.Set(ctx, recommend.Preferences{UserID: "u", FavoriteGenres: genres})
	_ = s.Set(ctx, recommend.Preferences{UserID: "v"})
	genres[0] = "mutated"

	p, err := s.Get(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if p.FavoriteGenres[0] != "jazz" {
		t.Errorf("stored slice aliased caller: %v", p.FavoriteGenres)
	}

	_ = s.Set(ctx, recommend.Preferences{UserID: "u", FavoriteGenres: []string{"rock"}})
	all, _ := s.All(ctx)
	if len(all) != 2 || all[0].UserID != "u" || all[0].FavoriteGenres[0] != "rock" {
		t.Errorf("All = %+v", all)
	}
}

func TestFeedbackConcurrentSave(t *testing.T) {
	s := NewFeedback()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := "a"
			if i%2 == 0 {
				user = "b"
			}
			_ = s.Save(context.Background(), recommend.FeedbackRecord{ID: fmt.Sprint(i), UserID: user})
		}(i)
	}
	wg.Wait()

	if got := len(s.List("")); got != 50 {
		t.Errorf("List() = %d, want 50", got)
	}
	if got := len(s.List("a")); got != 25 {
		t.Errorf("List(a) = %d, want 25", got)
	}
}
