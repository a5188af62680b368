// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultLanguage is assumed for artists and events that carry no language.
const DefaultLanguage = "english"

// UnknownSession is recorded when an event arrives without a session id.
const UnknownSession = "unknown"

// Pseudo-item prefixes. Matrix columns with these prefixes represent stated
// genres and search queries, never catalog artists.
const (
	GenrePrefix  = "genre_"
	SearchPrefix = "search_"
)

// IsPseudoItem reports whether item is a genre or search column.
func IsPseudoItem(item string) bool {
	return strings.HasPrefix(item, GenrePrefix) || strings.HasPrefix(item, SearchPrefix)
}

var (
	// ErrNotFound is returned by stores when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownAction is returned when an event names an action with no payload schema.
	ErrUnknownAction = errors.New("unknown action")
)

// Artist is one catalog item as supplied by the caller for a request.
type Artist struct {
	ID         string   `json:"artist_id" bson:"artist_id"`
	Name       string   `json:"name" bson:"name"`
	Genres     []string `json:"genres" bson:"genres"`
	Language   string   `json:"language,omitempty" bson:"language,omitempty"`
	Popularity int      `json:"popularity" bson:"popularity"`
	Followers  int64    `json:"followers" bson:"followers"`
}

// Lang returns the artist language, or DefaultLanguage when unset.
func (a *Artist) Lang() string {
	if a.Language == "" {
		return DefaultLanguage
	}
	return a.Language
}

// Preferences are the explicit tastes a user has stated.
type Preferences struct {
	UserID           string    `json:"user_id" bson:"user_id"`
	FavoriteGenres   []string  `json:"favorite_genres" bson:"favorite_genres"`
	FavoriteArtists  []string  `json:"favorite_artists" bson:"favorite_artists"`
	ListeningHistory []string  `json:"listening_history,omitempty" bson:"listening_history,omitempty"`
	MoodPreferences  []string  `json:"mood_preferences,omitempty" bson:"mood_preferences,omitempty"`
	TempoPreferences []string  `json:"tempo_preferences,omitempty" bson:"tempo_preferences,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// PreferencesUpdate is a partial update. Nil slices are left untouched.
type PreferencesUpdate struct {
	FavoriteGenres   []string `json:"favorite_genres,omitempty" validate:"omitempty,max=20,dive,notblank"`
	FavoriteArtists  []string `json:"favorite_artists,omitempty" validate:"omitempty,max=50,dive,notblank"`
	ListeningHistory []string `json:"listening_history,omitempty" validate:"omitempty,max=500"`
	MoodPreferences  []string `json:"mood_preferences,omitempty" validate:"omitempty,max=10,dive,notblank"`
	TempoPreferences []string `json:"tempo_preferences,omitempty" validate:"omitempty,max=5,dive,notblank"`
}

// Apply merges u into p and returns the result. Genre, mood and tempo
// values are lowercased, artist names are trimmed.
func (u *PreferencesUpdate) Apply(p Preferences, now time.Time) Preferences {
	if u.FavoriteGenres != nil {
		p.FavoriteGenres = mapStrings(u.FavoriteGenres, lowerTrim)
	}
	if u.FavoriteArtists != nil {
		p.FavoriteArtists = mapStrings(u.FavoriteArtists, strings.TrimSpace)
	}
	if u.ListeningHistory != nil {
		p.ListeningHistory = mapStrings(u.ListeningHistory, strings.TrimSpace)
	}
	if u.MoodPreferences != nil {
		p.MoodPreferences = mapStrings(u.MoodPreferences, lowerTrim)
	}
	if u.TempoPreferences != nil {
		p.TempoPreferences = mapStrings(u.TempoPreferences, lowerTrim)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return p
}

func lowerTrim(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func mapStrings(in []string, fn func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fn(s)
	}
	return out
}

// InteractionEvent is one append-only record of user behavior.
type InteractionEvent struct {
	UserID    string     `json:"user_id"`
	Action    ActionKind `json:"action"`
	Payload   Payload    `json:"-"`
	Timestamp string     `json:"timestamp"`
	SessionID string     `json:"session_id"`
}

// Time parses the event timestamp. Unparsable values yield now and false.
func (e *InteractionEvent) Time(now time.Time) (time.Time, bool) {
	return ParseTimestamp(e.Timestamp, now)
}

// timestampLayouts are tried in order. The zone-less layouts cover documents
// written by older clients that stored local ISO strings.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// FormatTimestamp renders t the way events store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses s as stored on an event. When s cannot be parsed it
// returns now and false.
func ParseTimestamp(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return now, false
}

// Scored is an item with an engine score.
type Scored struct {
	Item  string  `json:"item"`
	Score float64 `json:"score"`
}

// Recommendation is one entry of a hybrid result.
type Recommendation struct {
	ArtistID   string   `json:"artist_id"`
	Name       string   `json:"artist_name"`
	Genres     []string `json:"genres"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reasoning"`
}

// Engine names used in degraded results, logs and metrics.
const (
	EngineContent       = "content"
	EngineCollaborative = "collaborative"
	EnginePrediction    = "prediction"
	EnginePreferences   = "preferences"
)

// BehaviorSummary is a windowed view of one user's recent interactions.
type BehaviorSummary struct {
	SearchTerms       map[string]int `json:"search_patterns"`
	Genres            map[string]int `json:"genre_preferences"`
	Languages         map[string]int `json:"language_preferences"`
	Artists           map[string]int `json:"most_played_artists"`
	ListeningHours    []int          `json:"listening_times"`
	SessionDurations  []float64      `json:"session_durations"`
	DiscoveryRate     float64        `json:"discovery_rate"`
	TotalInteractions int            `json:"total_interactions"`
	WindowDays        int            `json:"window_days"`
}

// NewBehaviorSummary returns an empty summary with initialized maps.
func NewBehaviorSummary(windowDays int) BehaviorSummary {
	return BehaviorSummary{
		SearchTerms: make(map[string]int),
		Genres:      make(map[string]int),
		Languages:   make(map[string]int),
		Artists:     make(map[string]int),
		WindowDays:  windowDays,
	}
}

// PredictionSource names the rule that produced a prediction.
type PredictionSource string

const (
	SourceSearchHistory     PredictionSource = "search_history"
	SourceListeningBehavior PredictionSource = "listening_behavior"
	SourceStatedPreferences PredictionSource = "stated_preferences"
	SourceDefault           PredictionSource = "default"
	SourceLanguageBehavior  PredictionSource = "language_behavior"
	SourceCollaborative     PredictionSource = "collaborative"
)

// Prediction is one predicted genre, language or artist.
type Prediction struct {
	Value      string           `json:"value"`
	Confidence float64          `json:"confidence"`
	Source     PredictionSource `json:"source"`
	Reason     string           `json:"reason"`
}

// Predictions is the bundle produced for one user.
type Predictions struct {
	Genres    []Prediction `json:"predicted_genres"`
	Languages []Prediction `json:"predicted_languages"`
	Artists   []Prediction `json:"predicted_artists"`
	Reasoning []string     `json:"reasoning"`
}

// GenreValues returns the predicted genre names in order.
func (p *Predictions) GenreValues() []string { return values(p.Genres) }

// LanguageValues returns the predicted language names in order.
func (p *Predictions) LanguageValues() []string { return values(p.Languages) }

func values(ps []Prediction) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Value
	}
	return out
}

// FeedbackKind is the reaction a user gave to a recommendation.
type FeedbackKind string

const (
	FeedbackLike    FeedbackKind = "like"
	FeedbackDislike FeedbackKind = "dislike"
	FeedbackSave    FeedbackKind = "save"
	FeedbackSkip    FeedbackKind = "skip"
)

// Positive reports whether the feedback counts as engagement.
func (k FeedbackKind) Positive() bool {
	return k == FeedbackLike || k == FeedbackSave
}

// FeedbackRecord is a stored reaction to a recommendation.
type FeedbackRecord struct {
	ID               string       `json:"id" bson:"_id"`
	UserID           string       `json:"user_id" bson:"user_id"`
	RecommendationID string       `json:"recommendation_id" bson:"recommendation_id"`
	Feedback         FeedbackKind `json:"feedback" bson:"feedback"`
	Artist           Artist       `json:"artist_data" bson:"artist_data"`
	Timestamp        string       `json:"timestamp" bson:"timestamp"`
}

// InteractionStore holds the append-only interaction log.
type InteractionStore interface {
	// Append stores one event.
	Append(ctx context.Context, event InteractionEvent) error

	// Query returns the user's newest limit events (all when limit <= 0),
	// oldest first by insertion. Timestamp order is not guaranteed.
	Query(ctx context.Context, userID string, limit int) ([]InteractionEvent, error)

	// All returns every stored event in insertion order.
	All(ctx context.Context) ([]InteractionEvent, error)
}

// PreferenceStore holds stated preferences keyed by user.
type PreferenceStore interface {
	// Get returns ErrNotFound when the user has no preferences.
	Get(ctx context.Context, userID string) (Preferences, error)

	// Set replaces the stored preferences for p.UserID.
	Set(ctx context.Context, p Preferences) error

	// All returns every stored preference document.
	All(ctx context.Context) ([]Preferences, error)
}

// FeedbackStore holds recommendation feedback.
type FeedbackStore interface {
	Save(ctx context.Context, rec FeedbackRecord) error
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time
