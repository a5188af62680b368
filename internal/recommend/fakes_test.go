// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var errStoreDown = errors.New("store unavailable")

type fakeInteractions struct {
	mu     sync.Mutex
	events []InteractionEvent
	err    error
}

func (f *fakeInteractions) Append(_ context.Context, ev InteractionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeInteractions) Query(_ context.Context, userID string, limit int) ([]InteractionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []InteractionEvent
	for i := len(f.events) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if f.events[i].UserID == userID {
			out = append(out, f.events[i])
		}
	}
	slices.Reverse(out)
	return out, nil
}

func (f *fakeInteractions) All(context.Context) ([]InteractionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]InteractionEvent(nil), f.events...), nil
}

func (f *fakeInteractions) add(user string, p Payload) {
	f.events = append(f.events, InteractionEvent{UserID: user, Action: p.Kind(), Payload: p, SessionID: UnknownSession})
}

type fakePrefs struct {
	mu    sync.Mutex
	prefs map[string]Preferences
	order []string
	err   error
}

func newFakePrefs(ps ...Preferences) *fakePrefs {
	f := &fakePrefs{prefs: make(map[string]Preferences)}
	for _, p := range ps {
		_ = f.Set(context.Background(), p)
	}
	return f
}

func (f *fakePrefs) Get(_ context.Context, userID string) (Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Preferences{}, f.err
	}
	p, ok := f.prefs[userID]
	if !ok {
		return Preferences{}, ErrNotFound
	}
	return p, nil
}

func (f *fakePrefs) Set(_ context.Context, p Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.prefs[p.UserID]; !ok {
		f.order = append(f.order, p.UserID)
	}
	f.prefs[p.UserID] = p
	return nil
}

func (f *fakePrefs) All(context.Context) ([]Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Preferences, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.prefs[id])
	}
	return out, nil
}

type fakeCollab struct {
	scores []Scored
	err    error
}

func (f *fakeCollab) Recommend(_ context.Context, _ string, n int) ([]Scored, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.scores) > n {
		return f.scores[:n], nil
	}
	return f.scores, nil
}

type fakePredictor struct {
	predictions Predictions
	err         error
}

func (f *fakePredictor) Predict(context.Context, string) (Predictions, error) {
	return f.predictions, f.err
}
