// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// Package memdb is an in-memory database.Store. It mirrors the MongoDB
// store's semantics (unique indexes, set operators, feed filtering) and is
// used as the development backend and as a test double.
//
// Documents are copied on the way in and on the way out, so callers never
// share memory with the store.
package memdb

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/models"
)

// Store is a mutex-guarded in-memory Store.
type Store struct {
	mu sync.RWMutex

	users         map[bson.ObjectID]*models.User
	movies        map[bson.ObjectID]*models.Movie
	books         map[bson.ObjectID]*models.Book
	connections   map[bson.ObjectID]*models.Connection
	comments      map[bson.ObjectID]*models.Comment
	follows       map[bson.ObjectID]*models.Follow
	notifications map[bson.ObjectID]*models.Notification

	// failures injects errors by operation name for tests.
	failures map[string]error
}

var _ database.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		users:         make(map[bson.ObjectID]*models.User),
		movies:        make(map[bson.ObjectID]*models.Movie),
		books:         make(map[bson.ObjectID]*models.Book),
		connections:   make(map[bson.ObjectID]*models.Connection),
		comments:      make(map[bson.ObjectID]*models.Comment),
		follows:       make(map[bson.ObjectID]*models.Follow),
		notifications: make(map[bson.ObjectID]*models.Notification),
		failures:      make(map[string]error),
	}
}

// FailOn makes the named operation return err until cleared with a nil err.
// Operation names are the method names, e.g. "PullFavoriteFromAllUsers".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close(context.Context) error {
	return nil
}

// Counts reports the number of documents per collection, for tests.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		database.CollUsers:         len(s.users),
		database.CollMovies:        len(s.movies),
		database.CollBooks:         len(s.books),
		database.CollConnections:   len(s.connections),
		database.CollComments:      len(s.comments),
		database.CollFollows:       len(s.follows),
		database.CollNotifications: len(s.notifications),
	}
}

func ensureID(id *bson.ObjectID) {
	if id.IsZero() {
		*id = bson.NewObjectID()
	}
}

// =============================================================================
// Users
// =============================================================================

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateUser"); err != nil {
		return err
	}

	u.Email = strings.ToLower(u.Email)
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	ensureID(&u.ID)
	if _, ok := s.users[u.ID]; ok {
		return database.ErrDuplicate
	}
	if u.Favorites == nil {
		u.Favorites = []bson.ObjectID{}
	}
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) UserExists(_ context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetUserSummaries(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[bson.ObjectID]*models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (s *Store) UpdateUserProfile(_ context.Context, id bson.ObjectID, update database.ProfileUpdate, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	setIf := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setIf(&u.DisplayName, update.DisplayName)
	setIf(&u.Bio, update.Bio)
	setIf(&u.Location, update.Location)
	setIf(&u.ProfilePictureURL, update.ProfilePictureURL)
	setIf(&u.ProfilePictureID, update.ProfilePictureID)
	u.UpdatedAt = now
	return cloneUser(u), nil
}

func (s *Store) AddUserFavorite(_ context.Context, userID, connectionID bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("AddUserFavorite"); err != nil {
		return err
	}
	u, ok := s.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	u.Favorites = addToSet(u.Favorites, connectionID)
	return nil
}

func (s *Store) RemoveUserFavorite(_ context.Context, userID, connectionID bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("RemoveUserFavorite"); err != nil {
		return err
	}
	u, ok := s.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	u.Favorites = pull(u.Favorites, connectionID)
	return nil
}

func (s *Store) PullFavoriteFromAllUsers(_ context.Context, connectionID bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("PullFavoriteFromAllUsers"); err != nil {
		return 0, err
	}
	var n int64
	for _, u := range s.users {
		if slices.Contains(u.Favorites, connectionID) {
			u.Favorites = pull(u.Favorites, connectionID)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteUser(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// =============================================================================
// Movies and books
// =============================================================================

func (s *Store) GetMovie(_ context.Context, id bson.ObjectID) (*models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneMovie(m), nil
}

func (s *Store) FindMovieByTitle(_ context.Context, title string) (*models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := models.TitleKey(title)
	for _, m := range s.movies {
		if m.TitleKey == key {
			return cloneMovie(m), nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) InsertMovie(_ context.Context, m *models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.movies {
		if existing.TitleKey == m.TitleKey {
			return database.ErrDuplicate
		}
	}
	ensureID(&m.ID)
	s.movies[m.ID] = cloneMovie(m)
	return nil
}

func (s *Store) UpdateMovieDetails(_ context.Context, id bson.ObjectID, in models.MovieInput, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return database.ErrNotFound
	}
	models.ApplyMovieDetails(m, in)
	m.TitleKey = models.TitleKey(in.Title)
	m.UpdatedAt = now
	return nil
}

func (s *Store) ClaimMoviePoster(_ context.Context, id bson.ObjectID, path, publicID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok || m.PosterPath != "" {
		return false, nil
	}
	m.PosterPath, m.PosterPublicID, m.UpdatedAt = path, publicID, now
	return true, nil
}

func (s *Store) SearchMovies(_ context.Context, prefix string, limit int) ([]*models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := models.TitleKey(prefix)
	out := []*models.Movie{}
	for _, m := range s.movies {
		if strings.HasPrefix(m.TitleKey, key) {
			out = append(out, cloneMovie(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return truncate(out, limit), nil
}

func (s *Store) GetBook(_ context.Context, id bson.ObjectID) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneBook(b), nil
}

func (s *Store) FindBookByTitle(_ context.Context, title string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := models.TitleKey(title)
	for _, b := range s.books {
		if b.TitleKey == key {
			return cloneBook(b), nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) InsertBook(_ context.Context, b *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.books {
		if existing.TitleKey == b.TitleKey {
			return database.ErrDuplicate
		}
	}
	ensureID(&b.ID)
	s.books[b.ID] = cloneBook(b)
	return nil
}

func (s *Store) UpdateBookDetails(_ context.Context, id bson.ObjectID, in models.BookInput, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return database.ErrNotFound
	}
	models.ApplyBookDetails(b, in)
	b.TitleKey = models.TitleKey(in.Title)
	b.UpdatedAt = now
	return nil
}

func (s *Store) ClaimBookCover(_ context.Context, id bson.ObjectID, path, publicID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok || b.CoverPath != "" {
		return false, nil
	}
	b.CoverPath, b.CoverPublicID, b.UpdatedAt = path, publicID, now
	return true, nil
}

func (s *Store) SearchBooks(_ context.Context, prefix string, limit int) ([]*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := models.TitleKey(prefix)
	out := []*models.Book{}
	for _, b := range s.books {
		if strings.HasPrefix(b.TitleKey, key) {
			out = append(out, cloneBook(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return truncate(out, limit), nil
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
