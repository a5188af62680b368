// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package prediction

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/store/memory"
)

var errDown = errors.New("down")

type fakeBehavior struct {
	summary recommend.BehaviorSummary
	err     error
}

func (f *fakeBehavior) Summarize(context.Context, string, int) (recommend.BehaviorSummary, error) {
	return f.summary, f.err
}

type fakeCollab struct {
	scores []recommend.Scored
	err    error
}

func (f *fakeCollab) Recommend(_ context.Context, _ string, n int) ([]recommend.Scored, error) {
	if len(f.scores) > n {
		return f.scores[:n], f.err
	}
	return f.scores, f.err
}

type brokenPrefs struct{ recommend.PreferenceStore }

func (brokenPrefs) Get(context.Context, string) (recommend.Preferences, error) {
	return recommend.Preferences{}, errDown
}

func summary(mutate func(*recommend.BehaviorSummary)) recommend.BehaviorSummary {
	s := recommend.NewBehaviorSummary(30)
	if mutate != nil {
		mutate(&s)
	}
	return s
}

func newEngine(behavior BehaviorSource, prefs recommend.PreferenceStore, collab recommend.CollaborativeRecommender) *Engine {
	return NewEngine(behavior, prefs, collab, recommend.DefaultConfig().Prediction, zerolog.Nop())
}

func genreView(ps []recommend.Prediction) map[string]float64 {
	out := make(map[string]float64, len(ps))
	for _, p := range ps {
		out[p.Value] = p.Confidence
	}
	return out
}

func TestPredictEmptyUserGetsDefaults(t *testing.T) {
	e := newEngine(&fakeBehavior{summary: summary(nil)}, memory.NewPreferences(), nil)
	got, err := e.Predict(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	want := []string{"pop", "rock", "electronic"}
	if !reflect.DeepEqual(got.GenreValues(), want) {
		t.Fatalf("genres = %v, want %v", got.GenreValues(), want)
	}
	for _, p := range got.Genres {
		if p.Confidence != 0.4 || p.Source != recommend.SourceDefault {
			t.Errorf("%+v, want confidence 0.4 from default", p)
		}
	}
	if len(got.Languages) != 0 || len(got.Artists) != 0 || len(got.Reasoning) != 0 {
		t.Errorf("unexpected predictions: %+v", got)
	}
}

func TestPredictGenreCascade(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		summary   recommend.BehaviorSummary
		favorites []string
		want      map[string]float64
		source    recommend.PredictionSource
	}{
		{
			name: "search history",
			summary: summary(func(s *recommend.BehaviorSummary) {
				s.SearchTerms["jazz piano"] = 3
				s.SearchTerms["smooth jazz"] = 2 // jazz already predicted
				s.SearchTerms["metal"] = 1       // below threshold
				s.SearchTerms["indie rock"] = 9  // rock precedes indie
				s.Genres["blues"] = 40           // ignored, search wins
			}),
			want:   map[string]float64{"rock": 0.8, "jazz": 0.6},
			source: recommend.SourceSearchHistory,
		},
		{
			name: "search skips favorites",
			summary: summary(func(s *recommend.BehaviorSummary) {
				s.SearchTerms["pop punk"] = 2
				s.Genres["folk"] = 4
			}),
			favorites: []string{"pop"},
			want:      map[string]float64{"folk": 0.4},
			source:    recommend.SourceListeningBehavior,
		},
		{
			name: "listening behavior keeps vocabulary genres",
			summary: summary(func(s *recommend.BehaviorSummary) {
				s.Genres["bebop"] = 50
				s.Genres["jazz"] = 12
				s.Genres["blues"] = 3
				s.Genres["metal"] = 3
				s.Genres["pop"] = 1
			}),
			want:   map[string]float64{"jazz": 0.7, "blues": 0.3, "metal": 0.3},
			source: recommend.SourceListeningBehavior,
		},
		{
			name:      "stated preferences",
			summary:   summary(func(s *recommend.BehaviorSummary) { s.Genres["bebop"] = 5 }),
			favorites: []string{"k-pop", "shoegaze", "jazz"},
			want:      map[string]float64{"k-pop": 0.6, "shoegaze": 0.6},
			source:    recommend.SourceStatedPreferences,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := memory.NewPreferences()
			_ = prefs.Set(ctx, recommend.Preferences{UserID: "u", FavoriteGenres: tt.favorites})
			got, err := newEngine(&fakeBehavior{summary: tt.summary}, prefs, nil).Predict(ctx, "u")
			if err != nil {
				t.Fatal(err)
			}
			if gv := genreView(got.Genres); !reflect.DeepEqual(gv, tt.want) {
				t.Errorf("genres = %v, want %v", gv, tt.want)
			}
			for _, p := range got.Genres {
				if p.Source != tt.source {
					t.Errorf("%s source = %s, want %s", p.Value, p.Source, tt.source)
				}
			}
		})
	}
}

func TestPredictSearchOrder(t *testing.T) {
	s := summary(func(s *recommend.BehaviorSummary) {
		s.SearchTerms["latin"] = 2
		s.SearchTerms["classical"] = 2
		s.SearchTerms["country"] = 4
	})
	got, err := newEngine(&fakeBehavior{summary: s}, memory.NewPreferences(), nil).Predict(context.Background(), "u")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"country", "classical", "latin"}
	if !reflect.DeepEqual(got.GenreValues(), want) {
		t.Errorf("genres = %v, want %v", got.GenreValues(), want)
	}
	if got.Genres[0].Reason != "Based on search patterns for country" {
		t.Errorf("reason = %q", got.Genres[0].Reason)
	}
}

func TestPredictLanguagesAndReasoning(t *testing.T) {
	s := summary(func(s *recommend.BehaviorSummary) {
		s.Languages["english"] = 1
		s.Languages["spanish"] = 2
		s.Languages["korean"] = 7
		s.DiscoveryRate = 0.5
		s.TotalInteractions = 51
	})
	got, err := newEngine(&fakeBehavior{summary: s}, memory.NewPreferences(), nil).Predict(context.Background(), "u")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.LanguageValues(), []string{"korean", "spanish"}) {
		t.Errorf("languages = %v", got.LanguageValues())
	}
	if got.Languages[0].Confidence != 0.8 || got.Languages[1].Confidence != 0.4 {
		t.Errorf("confidences = %+v", got.Languages)
	}
	if !reflect.DeepEqual(got.Reasoning, []string{NoteHighDiscovery, NoteHighActivity}) {
		t.Errorf("reasoning = %v", got.Reasoning)
	}
}

func TestPredictArtists(t *testing.T) {
	collab := &fakeCollab{scores: []recommend.Scored{
		{Item: "A", Score: 1.7},
		{Item: "B", Score: 0.9},
		{Item: "C", Score: 0.5},
		{Item: "D", Score: 0.4},
	}}
	got, err := newEngine(&fakeBehavior{summary: summary(nil)}, memory.NewPreferences(), collab).Predict(context.Background(), "u")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Artists) != 2 || got.Artists[0].Value != "A" || got.Artists[0].Confidence != 1 || got.Artists[1].Confidence != 0.9 {
		t.Errorf("artists = %+v", got.Artists)
	}
}

func TestPredictFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("preferences abort", func(t *testing.T) {
		got, err := newEngine(&fakeBehavior{summary: summary(nil)}, brokenPrefs{}, nil).Predict(ctx, "u")
		if !errors.Is(err, errDown) {
			t.Fatalf("err = %v", err)
		}
		if len(got.Genres) != 0 {
			t.Errorf("genres = %v, want empty bundle", got.Genres)
		}
	})

	t.Run("behavior degrades", func(t *testing.T) {
		got, err := newEngine(&fakeBehavior{err: errDown}, memory.NewPreferences(), nil).Predict(ctx, "u")
		if !errors.Is(err, errDown) {
			t.Fatalf("err = %v", err)
		}
		if len(got.Genres) != 3 {
			t.Errorf("genres = %v, want defaults", got.GenreValues())
		}
	})

	t.Run("collaborative degrades", func(t *testing.T) {
		got, err := newEngine(&fakeBehavior{summary: summary(nil)}, memory.NewPreferences(), &fakeCollab{err: errDown}).Predict(ctx, "u")
		if !errors.Is(err, errDown) {
			t.Fatalf("err = %v", err)
		}
		if len(got.Artists) != 0 || len(got.Genres) == 0 {
			t.Errorf("predictions = %+v", got)
		}
	})
}
