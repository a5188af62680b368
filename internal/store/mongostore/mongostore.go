// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package mongostore persists interactions, preferences and feedback in
// MongoDB.
//
// Collections:
//
//   - user_interactions: one document per event, payload under "data"
//   - user_preferences: one document per user, upserted by user_id
//   - recommendation_feedback: one document per feedback, _id is the uuid
//
// Insertion order is recovered by sorting on _id, which for driver
// generated ObjectIDs is creation order.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/cadence/internal/recommend"
)

// Collection names.
const (
	CollectionInteractions = "user_interactions"
	CollectionPreferences  = "user_preferences"
	CollectionFeedback     = "recommendation_feedback"
)

// Config locates the database.
type Config struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	EnsureIndexes  bool          `koanf:"ensure_indexes"`
}

// DefaultConfig returns local development defaults.
func DefaultConfig() Config {
	return Config{
		URI:            "mongodb://localhost:27017",
		Database:       "cadence",
		ConnectTimeout: 10 * time.Second,
		EnsureIndexes:  true,
	}
}

// Store owns the client and hands out the per-collection adapters.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger zerolog.Logger
}

// Connect dials MongoDB, verifies the connection and optionally creates
// indexes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Connect(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "mongostore").Logger()

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := &Store{client: client, db: client.Database(cfg.Database), logger: logger}
	if cfg.EnsureIndexes {
		s.ensureIndexes(ctx)
	}
	logger.Info().Str("database", cfg.Database).Msg("connected to mongodb")
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) {
	s.createIndex(ctx, CollectionInteractions, bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: 1}}, "user_id_order", false)
	s.createIndex(ctx, CollectionPreferences, bson.D{{Key: "user_id", Value: 1}}, "user_id_unique", true)
	s.createIndex(ctx, CollectionFeedback, bson.D{{Key: "user_id", Value: 1}}, "user_id", false)
}

func (s *Store) createIndex(ctx context.Context, collection string, keys bson.D, name string, unique bool) {
	model := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name).SetUnique(unique),
	}
	if _, err := s.db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		s.logger.Warn().Err(err).Str("collection", collection).Str("index", name).Msg("failed to create index")
		return
	}
	s.logger.Debug().Str("collection", collection).Str("index", name).Msg("index ensured")
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Interactions returns the interaction log adapter.
func (s *Store) Interactions() *Interactions {
	return &Interactions{coll: s.db.Collection(CollectionInteractions), logger: s.logger}
}

// Preferences returns the preference adapter.
func (s *Store) Preferences() *Preferences {
	return &Preferences{coll: s.db.Collection(CollectionPreferences)}
}

// Feedback returns the feedback adapter.
func (s *Store) Feedback() *Feedback {
	return &Feedback{coll: s.db.Collection(CollectionFeedback)}
}

var (
	insertionOrder = bson.D{{Key: "_id", Value: 1}}
	newestFirst    = bson.D{{Key: "_id", Value: -1}}
)

// Interactions implements recommend.InteractionStore.
type Interactions struct {
	coll   *mongo.Collection
	logger zerolog.Logger
}

// Append implements recommend.InteractionStore.
func (s *Interactions) Append(ctx context.Context, ev recommend.InteractionEvent) error {
	doc, err := encodeEvent(&ev)
	if err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// Query implements recommend.InteractionStore.
func (s *Interactions) Query(ctx context.Context, userID string, limit int) ([]recommend.InteractionEvent, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	out, err := s.find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// All implements recommend.InteractionStore.
func (s *Interactions) All(ctx context.Context) ([]recommend.InteractionEvent, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(insertionOrder))
}

func (s *Interactions) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]recommend.InteractionEvent, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find interactions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []recommend.InteractionEvent
	for cursor.Next(ctx) {
		var doc interactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode interaction: %w", err)
		}
		ev, err := decodeEvent(&doc)
		if err != nil {
			s.logger.Warn().Err(err).Str("action", doc.Action).Msg("interaction payload unreadable; keeping event without payload")
		}
		out = append(out, ev)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}

// Preferences implements recommend.PreferenceStore.
type Preferences struct {
	coll *mongo.Collection
}

// Get implements recommend.PreferenceStore.
func (s *Preferences) Get(ctx context.Context, userID string) (recommend.Preferences, error) {
	var p recommend.Preferences
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return recommend.Preferences{}, recommend.ErrNotFound
	}
	if err != nil {
		return recommend.Preferences{}, fmt.Errorf("find preferences: %w", err)
	}
	return p, nil
}

// Set implements recommend.PreferenceStore.
func (s *Preferences) Set(ctx context.Context, p recommend.Preferences) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"user_id": p.UserID},
		bson.M{"$set": p},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

// All implements recommend.PreferenceStore.
func (s *Preferences) All(ctx context.Context) ([]recommend.Preferences, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(insertionOrder))
	if err != nil {
		return nil, fmt.Errorf("find preferences: %w", err)
	}
	var out []recommend.Preferences
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return out, nil
}

// Feedback implements recommend.FeedbackStore.
type Feedback struct {
	coll *mongo.Collection
}

// Save implements recommend.FeedbackStore.
func (s *Feedback) Save(ctx context.Context, rec recommend.FeedbackRecord) error {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// ByUser returns the stored feedback for userID in insertion order.
func (s *Feedback) ByUser(ctx context.Context, userID string) ([]recommend.FeedbackRecord, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	var out []recommend.FeedbackRecord
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return out, nil
}
