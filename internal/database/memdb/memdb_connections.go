// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package memdb

import (
	"bytes"
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/models"
)

func (s *Store) InsertConnection(_ context.Context, c *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertConnection"); err != nil {
		return err
	}
	ensureID(&c.ID)
	if _, ok := s.connections[c.ID]; ok {
		return database.ErrDuplicate
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Likes == nil {
		c.Likes = []bson.ObjectID{}
	}
	if c.Favorites == nil {
		c.Favorites = []bson.ObjectID{}
	}
	s.connections[c.ID] = cloneConnection(c)
	return nil
}

func (s *Store) GetConnection(_ context.Context, id bson.ObjectID) (*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.connections[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneConnection(c), nil
}

func (s *Store) GetConnectionView(_ context.Context, id bson.ObjectID) (*models.ConnectionView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.connections[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s.view(c), nil
}

func (s *Store) ListConnectionViews(_ context.Context, q database.ConnectionQuery) ([]*models.ConnectionView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Connection
	for _, c := range s.connections {
		if q.UserRef != nil && c.UserRef != *q.UserRef {
			continue
		}
		if q.MovieRef != nil && (c.MovieRef == nil || *c.MovieRef != *q.MovieRef) {
			continue
		}
		if q.BookRef != nil && (c.BookRef == nil || *c.BookRef != *q.BookRef) {
			continue
		}
		if q.IDs != nil && !slices.Contains(q.IDs, c.ID) {
			continue
		}
		matched = append(matched, c)
	}
	sortNewestFirst(matched)
	matched = truncate(matched, q.Limit)

	out := make([]*models.ConnectionView, 0, len(matched))
	for _, c := range matched {
		out = append(out, s.view(c))
	}
	return out, nil
}

func (s *Store) ListConnectionsByUser(_ context.Context, userID bson.ObjectID) ([]*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Connection{}
	for _, c := range s.connections {
		if c.UserRef == userID {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	for i, c := range out {
		out[i] = cloneConnection(c)
	}
	return out, nil
}

func (s *Store) CountConnectionsByUser(_ context.Context, userID bson.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, c := range s.connections {
		if c.UserRef == userID {
			n++
		}
	}
	return n, nil
}

// Feed filters, counts, and pages connections the way the aggregation
// pipeline does: filters apply to the joined movie and book, the total
// describes the filtered set, and pages are newest first.
func (s *Store) Feed(_ context.Context, f models.FeedFilter, page, pageSize int) ([]*models.ConnectionView, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("Feed"); err != nil {
		return nil, 0, err
	}

	var matched []*models.Connection
	for _, c := range s.connections {
		if s.matchesFeed(c, f) {
			matched = append(matched, c)
		}
	}
	sortNewestFirst(matched)

	total := int64(len(matched))
	if page < 1 {
		page = 1
	}
	skip := database.PageOffset(page, pageSize)
	if skip >= total {
		return []*models.ConnectionView{}, total, nil
	}
	from := int(skip)
	to := min(from+pageSize, len(matched))

	out := make([]*models.ConnectionView, 0, to-from)
	for _, c := range matched[from:to] {
		out = append(out, s.view(c))
	}
	return out, total, nil
}

func (s *Store) matchesFeed(c *models.Connection, f models.FeedFilter) bool {
	if len(f.Tags) > 0 && !slices.ContainsFunc(c.Tags, func(t string) bool { return slices.Contains(f.Tags, t) }) {
		return false
	}

	var movie *models.Movie
	if c.MovieRef != nil {
		movie = s.movies[*c.MovieRef]
	}
	var book *models.Book
	if c.BookRef != nil {
		book = s.books[*c.BookRef]
	}

	if f.MovieGenre != "" && (movie == nil || !containsFold(movie.Genres, f.MovieGenre)) {
		return false
	}
	if f.Director != "" && (movie == nil || !strings.EqualFold(movie.Director, f.Director)) {
		return false
	}
	if f.Actor != "" && (movie == nil || !containsFold(movie.Actors, f.Actor)) {
		return false
	}
	if f.BookGenre != "" && (book == nil || !containsFold(book.Genres, f.BookGenre)) {
		return false
	}
	if f.Author != "" && (book == nil || !strings.EqualFold(book.Author, f.Author)) {
		return false
	}
	return true
}

func (s *Store) AddToSet(_ context.Context, id bson.ObjectID, field database.SetField, userID bson.ObjectID) error {
	return s.updateSet(id, field, func(ids []bson.ObjectID) []bson.ObjectID { return addToSet(ids, userID) })
}

func (s *Store) PullFromSet(_ context.Context, id bson.ObjectID, field database.SetField, userID bson.ObjectID) error {
	return s.updateSet(id, field, func(ids []bson.ObjectID) []bson.ObjectID { return pull(ids, userID) })
}

func (s *Store) updateSet(id bson.ObjectID, field database.SetField, fn func([]bson.ObjectID) []bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	if !ok {
		return database.ErrNotFound
	}
	switch field {
	case database.SetLikes:
		c.Likes = fn(c.Likes)
	case database.SetFavorites:
		c.Favorites = fn(c.Favorites)
	}
	return nil
}

func (s *Store) PullUserFromAllSets(_ context.Context, userID bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.connections {
		c.Likes = pull(c.Likes, userID)
		c.Favorites = pull(c.Favorites, userID)
	}
	return nil
}

func (s *Store) UpdateConnection(_ context.Context, id bson.ObjectID, update database.ConnectionUpdate, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	if !ok {
		return database.ErrNotFound
	}
	if update.Context != nil {
		c.Context = *update.Context
	}
	if update.Tags != nil {
		c.Tags = slices.Clone(*update.Tags)
	}
	if update.ScreenshotURL != nil {
		c.ScreenshotURL = *update.ScreenshotURL
	}
	if update.ScreenshotPublicID != nil {
		c.ScreenshotPublicID = *update.ScreenshotPublicID
	}
	c.UpdatedAt = now
	return nil
}

func (s *Store) DeleteConnection(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("DeleteConnection"); err != nil {
		return err
	}
	if _, ok := s.connections[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.connections, id)
	return nil
}

// view populates c. Callers hold at least the read lock.
func (s *Store) view(c *models.Connection) *models.ConnectionView {
	var user *models.UserSummary
	if u, ok := s.users[c.UserRef]; ok {
		user = u.Summary()
	}
	var movie *models.Movie
	if c.MovieRef != nil {
		if m, ok := s.movies[*c.MovieRef]; ok {
			movie = cloneMovie(m)
		}
	}
	var book *models.Book
	if c.BookRef != nil {
		if b, ok := s.books[*c.BookRef]; ok {
			book = cloneBook(b)
		}
	}
	return models.NewConnectionView(cloneConnection(c), user, movie, book)
}

func sortNewestFirst(cs []*models.Connection) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return bytes.Compare(cs[i].ID[:], cs[j].ID[:]) > 0
	})
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, v) })
}

func addToSet(ids []bson.ObjectID, id bson.ObjectID) []bson.ObjectID {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func pull(ids []bson.ObjectID, id bson.ObjectID) []bson.ObjectID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if out == nil {
		out = []bson.ObjectID{}
	}
	return out
}
