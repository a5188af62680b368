// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type hybridFixture struct {
	prefs     *fakePrefs
	collab    *fakeCollab
	predictor *fakePredictor
	config    *Config
}

func newHybridFixture() *hybridFixture {
	return &hybridFixture{
		prefs: newFakePrefs(Preferences{UserID: "u", FavoriteArtists: []string{"Alpha"}}),
		collab: &fakeCollab{scores: []Scored{
			{Item: "genre_pop", Score: 9},
			{Item: "search_x", Score: 9},
			{Item: "Alpha", Score: 5},
			{Item: "Charlie", Score: 0.5},
		}},
		predictor: &fakePredictor{predictions: Predictions{
			Genres:    []Prediction{{Value: "indie", Confidence: 0.8, Source: SourceSearchHistory}},
			Languages: []Prediction{{Value: "english", Confidence: 0.9, Source: SourceLanguageBehavior}},
		}},
		config: DefaultConfig(),
	}
}

func (f *hybridFixture) hybrid() *Hybrid {
	content := NewContentEngine(f.config.Content, zerolog.Nop())
	return NewHybrid(content, f.collab, f.predictor, f.prefs, f.config, zerolog.Nop())
}

func ids(items []Recommendation) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.ArtistID
	}
	return out
}

func TestHybridBlendsSignals(t *testing.T) {
	h := newHybridFixture().hybrid()
	res, err := h.Recommend(context.Background(), HybridRequest{UserID: "u", Catalog: testCatalog(), Limit: 10})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(res.Degraded) != 0 {
		t.Errorf("Degraded = %v, want none", res.Degraded)
	}
	if res.TotalAvailable != 4 {
		t.Errorf("TotalAvailable = %d, want 4", res.TotalAvailable)
	}

	// a1 is a favorite; a4 shares no signal with the user.
	if got := ids(res.Items); !reflect.DeepEqual(got, []string{"a2", "a3"}) {
		t.Fatalf("items = %v, want [a2 a3]", got)
	}

	a2 := res.Items[0]
	if a2.Reason != "Content similarity: 0.40; Prediction boost: 0.30" {
		t.Errorf("a2 reason = %q", a2.Reason)
	}
	if a2.Score < 0.69 || a2.Score > 0.71 {
		t.Errorf("a2 score = %v, want 0.7", a2.Score)
	}

	a3 := res.Items[1]
	if !strings.Contains(a3.Reason, "User similarity: 0.15") {
		t.Errorf("a3 reason = %q, want collaborative contribution", a3.Reason)
	}
	if !strings.HasPrefix(a3.Reason, "Content similarity: ") {
		t.Errorf("a3 reason = %q, want content first", a3.Reason)
	}
}

func TestHybridDeterministic(t *testing.T) {
	h := newHybridFixture().hybrid()
	req := HybridRequest{UserID: "u", Catalog: testCatalog(), Limit: 10}

	first, err := h.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestHybridConfidenceCapped(t *testing.T) {
	f := newHybridFixture()
	f.config.Weights.GenreBoost = 0.6
	h := f.hybrid()

	res, err := h.Recommend(context.Background(), HybridRequest{UserID: "u", Catalog: testCatalog()})
	if err != nil {
		t.Fatal(err)
	}
	var capped bool
	for _, r := range res.Items {
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("%s confidence = %v, outside [0,1]", r.ArtistID, r.Confidence)
		}
		if r.Score > 1 {
			capped = true
			if r.Confidence != 1 {
				t.Errorf("%s confidence = %v, want 1 for score %v", r.ArtistID, r.Confidence, r.Score)
			}
		}
	}
	if !capped {
		t.Error("fixture should produce a score above 1")
	}
}

func TestHybridEmptyCatalog(t *testing.T) {
	h := newHybridFixture().hybrid()
	res, err := h.Recommend(context.Background(), HybridRequest{UserID: "u"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Errorf("Items = %#v, want empty non-nil slice", res.Items)
	}
}

func TestHybridDegraded(t *testing.T) {
	tests := []struct {
		name   string
		breakFn func(f *hybridFixture)
		engine string
		want   []string
	}{
		{
			name:   "collaborative",
			breakFn: func(f *hybridFixture) { f.collab.err = errStoreDown },
			engine: EngineCollaborative,
			want:   []string{"a2", "a3"},
		},
		{
			name:   "prediction",
			breakFn: func(f *hybridFixture) { f.predictor.err = errStoreDown },
			engine: EnginePrediction,
			want:   []string{"a2", "a3"},
		},
		{
			name:   "preferences",
			breakFn: func(f *hybridFixture) { f.prefs.err = errStoreDown },
			engine: EnginePreferences,
			// Without favorites there is no content signal and nothing is excluded.
			want: []string{"a1", "a2", "a3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHybridFixture()
			tt.breakFn(f)
			res, err := f.hybrid().Recommend(context.Background(), HybridRequest{UserID: "u", Catalog: testCatalog()})
			if !errors.Is(err, errStoreDown) {
				t.Errorf("err = %v, want errStoreDown", err)
			}
			if !slices.Contains(res.Degraded, tt.engine) {
				t.Errorf("Degraded = %v, want %s", res.Degraded, tt.engine)
			}
			got := ids(res.Items)
			slices.Sort(got)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("items = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHybridNeverReturnsPseudoItemsOrFavorites(t *testing.T) {
	f := newHybridFixture()
	catalog := append(testCatalog(), Artist{ID: "genre_pop", Name: "genre_pop", Genres: []string{"indie"}})
	f.prefs = newFakePrefs(Preferences{UserID: "u", FavoriteArtists: []string{"a1", "Bravo"}})

	res, err := f.hybrid().Recommend(context.Background(), HybridRequest{UserID: "u", Catalog: catalog})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.Items {
		switch r.ArtistID {
		case "a1", "a2":
			t.Errorf("favorite %s returned", r.ArtistID)
		case "genre_pop":
			if strings.Contains(r.Reason, "User similarity") {
				t.Errorf("pseudo-item collaborative score leaked: %q", r.Reason)
			}
		}
	}
}

func TestHybridLanguageFilterAndLimit(t *testing.T) {
	f := newHybridFixture()
	f.predictor.predictions.Languages = []Prediction{{Value: "spanish"}}
	h := f.hybrid()

	res, err := h.Recommend(context.Background(), HybridRequest{UserID: "u", Catalog: testCatalog(), Language: "Spanish"})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalAvailable != 1 {
		t.Errorf("TotalAvailable = %d, want 1", res.TotalAvailable)
	}
	if got := ids(res.Items); !reflect.DeepEqual(got, []string{"a4"}) {
		t.Errorf("items = %v, want [a4]", got)
	}

	res, err = h.Recommend(context.Background(), HybridRequest{UserID: "u", Catalog: testCatalog(), Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 1 {
		t.Errorf("len = %d, want 1", len(res.Items))
	}
}

func TestDedupeCatalog(t *testing.T) {
	in := []Artist{{ID: "x", Name: "first"}, {ID: "y"}, {ID: "x", Name: "second"}}
	got := DedupeCatalog(in)
	if len(got) != 2 || got[0].Name != "first" {
		t.Errorf("DedupeCatalog = %+v", got)
	}
}

func TestFilterLanguage(t *testing.T) {
	catalog := []Artist{{ID: "1", Language: "english"}, {ID: "2", Language: "Spanish"}, {ID: "3"}}
	tests := []struct {
		lang string
		want int
	}{
		{"", 3},
		{"all", 3},
		{"spanish", 1},
		{"eng", 2}, // "english" contains "eng"; empty language defaults to english
		{"korean", 0},
	}
	for _, tt := range tests {
		if got := FilterLanguage(catalog, tt.lang); len(got) != tt.want {
			t.Errorf("FilterLanguage(%q) = %d artists, want %d", tt.lang, len(got), tt.want)
		}
	}
}

func TestHybridConcurrentCatalogs(t *testing.T) {
	catalogA := testCatalog()
	catalogB := testCatalog()
	catalogB[1].Genres = []string{"salsa"}
	catalogB[1].Language = "spanish"

	baseline := func(catalog []Artist) HybridResult {
		t.Helper()
		res, err := newHybridFixture().hybrid().Recommend(context.Background(), HybridRequest{UserID: "u", Catalog: catalog, Limit: 10})
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	wantA, wantB := baseline(catalogA), baseline(catalogB)
	if reflect.DeepEqual(wantA, wantB) {
		t.Fatal("catalogs should score differently")
	}

	h := newHybridFixture().hybrid()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				catalog, want := catalogA, wantA
				if (g+i)%2 == 1 {
					catalog, want = catalogB, wantB
				}
				got, err := h.Recommend(context.Background(), HybridRequest{UserID: "u", Catalog: catalog, Limit: 10})
				if err != nil {
					t.Errorf("Recommend() error = %v", err)
					return
				}
				if !reflect.DeepEqual(got, want) {
					t.Errorf("goroutine %d iteration %d: got %+v, want %+v", g, i, got.Items, want.Items)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
