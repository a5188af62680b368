// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package memory provides in-process implementations of the recommend store
// interfaces. All stores are safe for concurrent use and return copies so
// callers cannot mutate stored state.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/tomtom215/cadence/internal/recommend"
)

// Interactions is an append-only in-memory interaction log.
type Interactions struct {
	mu     sync.RWMutex
	events []recommend.InteractionEvent
}

// NewInteractions creates an empty log.
func NewInteractions() *Interactions {
	return &Interactions{}
}

// Append implements recommend.InteractionStore.
func (s *Interactions) Append(ctx context.Context, ev recommend.InteractionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Query implements recommend.InteractionStore.
func (s *Interactions) Query(ctx context.Context, userID string, limit int) ([]recommend.InteractionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []recommend.InteractionEvent
	for i := len(s.events) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if s.events[i].UserID == userID {
			out = append(out, s.events[i])
		}
	}
	slices.Reverse(out)
	return out, nil
}

// All implements recommend.InteractionStore.
func (s *Interactions) All(ctx context.Context) ([]recommend.InteractionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events), nil
}

// Len returns the number of stored events.
func (s *Interactions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Preferences stores one preference document per user.
type Preferences struct {
	mu    sync.RWMutex
	prefs map[string]recommend.Preferences
	order []string
}

// NewPreferences creates an empty store.
func NewPreferences() *Preferences {
	return &Preferences{prefs: make(map[string]recommend.Preferences)}
}

// Get implements recommend.PreferenceStore.
func (s *Preferences) Get(ctx context.Context, userID string) (recommend.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return recommend.Preferences{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[userID]
	if !ok {
		return recommend.Preferences{}, recommend.ErrNotFound
	}
	return clonePreferences(p), nil
}

// Set implements recommend.PreferenceStore.
func (s *Preferences) Set(ctx context.Context, p recommend.Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prefs[p.UserID]; !ok {
		s.order = append(s.order, p.UserID)
	}
	s.prefs[p.UserID] = clonePreferences(p)
	return nil
}

// All implements recommend.PreferenceStore. Documents are returned in the
// order users were first stored.
func (s *Preferences) All(ctx context.Context) ([]recommend.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]recommend.Preferences, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clonePreferences(s.prefs[id]))
	}
	return out, nil
}

func clonePreferences(p recommend.Preferences) recommend.Preferences {
	p.FavoriteGenres = slices.Clone(p.FavoriteGenres)
	p.FavoriteArtists = slices.Clone(p.FavoriteArtists)
	p.ListeningHistory = slices.Clone(p.ListeningHistory)
	p.MoodPreferences = slices.Clone(p.MoodPreferences)
	p.TempoPreferences = slices.Clone(p.TempoPreferences)
	return p
}

// Feedback stores feedback records in arrival order.
type Feedback struct {
	mu      sync.RWMutex
	records []recommend.FeedbackRecord
}

// NewFeedback creates an empty store.
func NewFeedback() *Feedback {
	return &Feedback{}
}

// Save implements recommend.FeedbackStore.
func (s *Feedback) Save(ctx context.Context, rec recommend.FeedbackRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// List returns the feedback recorded for userID, or every record when
// userID is empty.
func (s *Feedback) List(userID string) []recommend.FeedbackRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []recommend.FeedbackRecord
	for i := range s.records {
		if userID == "" || s.records[i].UserID == userID {
			out = append(out, s.records[i])
		}
	}
	return out
}
