// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/metrics"
)

// Collection names.
const (
	CollUsers         = "users"
	CollMovies        = "movies"
	CollBooks         = "books"
	CollConnections   = "connections"
	CollComments      = "comments"
	CollFollows       = "follows"
	CollNotifications = "notifications"
)

const defaultQueryTimeout = 10 * time.Second

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	queryTimeout time.Duration

	users         *mongo.Collection
	movies        *mongo.Collection
	books         *mongo.Collection
	connections   *mongo.Collection
	comments      *mongo.Collection
	follows       *mongo.Collection
	notifications *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB, verifies the connection, and creates
// the indexes the store relies on.
func NewMongoStore(ctx context.Context, cfg *config.DatabaseConfig) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("moviebooks")
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	s := newMongoStore(client, cfg.Name, cfg.QueryTimeout)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logging.Info().
		Str("database", cfg.Name).
		Msg("Connected to MongoDB")
	return s, nil
}

func newMongoStore(client *mongo.Client, name string, queryTimeout time.Duration) *MongoStore {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	db := client.Database(name)
	return &MongoStore{
		client:        client,
		db:            db,
		queryTimeout:  queryTimeout,
		users:         db.Collection(CollUsers),
		movies:        db.Collection(CollMovies),
		books:         db.Collection(CollBooks),
		connections:   db.Collection(CollConnections),
		comments:      db.Collection(CollComments),
		follows:       db.Collection(CollFollows),
		notifications: db.Collection(CollNotifications),
	}
}

func connectTimeout(cfg *config.DatabaseConfig) time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return defaultQueryTimeout
}

// Ping checks that the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Database exposes the underlying database for tests and tooling.
func (s *MongoStore) Database() *mongo.Database {
	return s.db
}

// EnsureIndexes creates every index the store depends on. Creating an
// existing index with the same definition is a no-op.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := func(name string) *options.IndexOptionsBuilder {
		return options.Index().SetName(name).SetUnique(true)
	}
	named := func(name string) *options.IndexOptionsBuilder {
		return options.Index().SetName(name)
	}

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique("username_unique")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique("email_unique")},
		},
		s.movies: {
			{Keys: bson.D{{Key: "titleKey", Value: 1}}, Options: unique("title_key_unique")},
		},
		s.books: {
			{Keys: bson.D{{Key: "titleKey", Value: 1}}, Options: unique("title_key_unique")},
		},
		s.connections: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: named("created_at_desc")},
			{Keys: bson.D{{Key: "userRef", Value: 1}}, Options: named("user_ref")},
			{Keys: bson.D{{Key: "movieRef", Value: 1}}, Options: named("movie_ref")},
			{Keys: bson.D{{Key: "bookRef", Value: 1}}, Options: named("book_ref")},
			{Keys: bson.D{{Key: "tags", Value: 1}}, Options: named("tags")},
		},
		s.comments: {
			{Keys: bson.D{{Key: "connection", Value: 1}, {Key: "createdAt", Value: 1}}, Options: named("connection_created_at")},
		},
		s.follows: {
			{Keys: bson.D{{Key: "follower", Value: 1}, {Key: "followee", Value: 1}}, Options: unique("follower_followee_unique")},
			{Keys: bson.D{{Key: "followee", Value: 1}}, Options: named("followee")},
		},
		s.notifications: {
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}, Options: named("recipient_created_at")},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// opContext bounds ctx by the configured query timeout when it has no deadline.
func (s *MongoStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// done maps driver errors onto the package sentinels and records metrics.
func done(op, coll string, start time.Time, err error) error {
	err = mapErr(err)
	recorded := err
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) {
		recorded = nil
	}
	metrics.RecordDBOperation(op, coll, time.Since(start), recorded)
	if err != nil && recorded != nil {
		logging.Debug().Err(err).Str("operation", op).Str("collection", coll).Msg("Document store operation failed")
	}
	return err
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func ensureID(id *bson.ObjectID) {
	if id.IsZero() {
		*id = bson.NewObjectID()
	}
}
