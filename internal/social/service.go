// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// Package social implements the MovieBooks domain: accounts, connections
// between movies and books, engagement (likes, favorites, comments), the
// follow graph, and notifications.
//
// Handlers call Service methods with the authenticated user's ID. Methods
// return *Error for client-visible failures and wrapped infrastructure
// errors otherwise. Multi-document side effects (notifications, favorite
// sync, deletion cleanup) run through the outbox effect runner: they are
// recorded, executed immediately, and retried in the background when they
// fail, without failing the request that caused them.
package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/authz"
	"github.com/tomtom215/moviebooks/internal/cache"
	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/events"
	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/outbox"
)

const (
	defaultPageSize          = 10
	defaultNotificationLimit = 50
	defaultSearchLimit       = 20
)

// Deps are the collaborators of a Service.
type Deps struct {
	Store database.Store
	Media media.Store
	Authz *authz.Enforcer
	JWT   *auth.JWTManager

	// Outbox records side effects for retry. Nil runs them unrecorded.
	Outbox outbox.Log

	// Events receives stored notifications for realtime delivery. Nil
	// disables the push.
	Events events.Publisher
}

// Service implements the domain operations.
type Service struct {
	store   database.Store
	media   media.Store
	authz   *authz.Enforcer
	jwt     *auth.JWTManager
	events  events.Publisher
	effects *outbox.Runner

	movies *cache.Cache[*models.Movie]
	books  *cache.Cache[*models.Book]

	bcryptCost        int
	pageSize          int
	notificationLimit int
	searchLimit       int
	allowContextOnly  bool
	maxTags           int

	now func() time.Time
}

// New wires a Service.
func New(cfg *config.Config, d Deps) (*Service, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("social: config is required")
	case d.Store == nil:
		return nil, errors.New("social: store is required")
	case d.Media == nil:
		return nil, errors.New("social: media store is required")
	case d.Authz == nil:
		return nil, errors.New("social: authorization enforcer is required")
	case d.JWT == nil:
		return nil, errors.New("social: JWT manager is required")
	}

	var ttl time.Duration
	if cfg.Cache.Enabled {
		ttl = cfg.Cache.TTL
	}

	s := &Service{
		store:             d.Store,
		media:             d.Media,
		authz:             d.Authz,
		jwt:               d.JWT,
		events:            d.Events,
		movies:            cache.New[*models.Movie]("movies", ttl),
		books:             cache.New[*models.Book]("books", ttl),
		bcryptCost:        cfg.Security.BcryptCost,
		pageSize:          positiveOr(cfg.API.PageSize, defaultPageSize),
		notificationLimit: positiveOr(cfg.API.NotificationLimit, defaultNotificationLimit),
		searchLimit:       positiveOr(cfg.API.SearchLimit, defaultSearchLimit),
		allowContextOnly:  cfg.Connections.AllowContextOnly,
		maxTags:           cfg.Connections.MaxTags,
		now:               func() time.Time { return time.Now().UTC() },
	}
	s.effects = outbox.NewRunner(d.Outbox, s.Dispatcher())
	return s, nil
}

// CacheService is a cache maintenance loop for the supervisor.
type CacheService interface {
	Serve(ctx context.Context) error
	String() string
}

// Caches returns the title caches so their prune loops can be supervised.
func (s *Service) Caches() []CacheService {
	return []CacheService{s.movies, s.books}
}

// Ping checks the document store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// actor loads the calling user. A valid token for a deleted account is
// treated as unauthenticated.
func (s *Service) actor(ctx context.Context, userID bson.ObjectID) (*models.User, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, unauthorizedError(MsgNotAuthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *Service) getConnection(ctx context.Context, id bson.ObjectID) (*models.Connection, error) {
	c, err := s.store.GetConnection(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(MsgConnectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load connection: %w", err)
	}
	return c, nil
}

func (s *Service) connectionView(ctx context.Context, id bson.ObjectID) (*models.ConnectionView, error) {
	v, err := s.store.GetConnectionView(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(MsgConnectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load connection view: %w", err)
	}
	return v, nil
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func containsID(ids []bson.ObjectID, id bson.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
