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
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/models"
)

// =============================================================================
// Comments
// =============================================================================

func (s *Store) InsertComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&c.ID)
	if _, ok := s.comments[c.ID]; ok {
		return database.ErrDuplicate
	}
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *Store) GetComment(_ context.Context, id bson.ObjectID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListComments(_ context.Context, connectionID bson.ObjectID) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Comment{}
	for _, c := range s.comments {
		if c.Connection == connectionID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (s *Store) UpdateCommentText(_ context.Context, id bson.ObjectID, text string, now time.Time) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	c.Text = text
	c.UpdatedAt = now
	cp := *c
	return &cp, nil
}

func (s *Store) DeleteComment(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *Store) DeleteCommentsByConnection(_ context.Context, connectionID bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("DeleteCommentsByConnection"); err != nil {
		return 0, err
	}
	return deleteWhere(s.comments, func(c *models.Comment) bool { return c.Connection == connectionID }), nil
}

func (s *Store) DeleteCommentsByUser(_ context.Context, userID bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteWhere(s.comments, func(c *models.Comment) bool { return c.User == userID }), nil
}

// =============================================================================
// Follows
// =============================================================================

func (s *Store) InsertFollow(_ context.Context, f *models.Follow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.follows {
		if existing.Follower == f.Follower && existing.Followee == f.Followee {
			return database.ErrDuplicate
		}
	}
	ensureID(&f.ID)
	cp := *f
	s.follows[f.ID] = &cp
	return nil
}

func (s *Store) GetFollow(_ context.Context, follower, followee bson.ObjectID) (*models.Follow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.follows {
		if f.Follower == follower && f.Followee == followee {
			cp := *f
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) DeleteFollow(_ context.Context, follower, followee bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := deleteWhere(s.follows, func(f *models.Follow) bool {
		return f.Follower == follower && f.Followee == followee
	})
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (s *Store) ListFollowers(_ context.Context, userID bson.ObjectID) ([]bson.ObjectID, error) {
	return s.listFollows(func(f *models.Follow) (bson.ObjectID, bool) {
		return f.Follower, f.Followee == userID
	}), nil
}

func (s *Store) ListFollowing(_ context.Context, userID bson.ObjectID) ([]bson.ObjectID, error) {
	return s.listFollows(func(f *models.Follow) (bson.ObjectID, bool) {
		return f.Followee, f.Follower == userID
	}), nil
}

func (s *Store) listFollows(pick func(*models.Follow) (bson.ObjectID, bool)) []bson.ObjectID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var edges []*models.Follow
	for _, f := range s.follows {
		if _, ok := pick(f); ok {
			edges = append(edges, f)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].CreatedAt.After(edges[j].CreatedAt) })
	ids := make([]bson.ObjectID, 0, len(edges))
	for _, f := range edges {
		id, _ := pick(f)
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) CountFollows(_ context.Context, userID bson.ObjectID) (models.FollowCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var counts models.FollowCounts
	for _, f := range s.follows {
		if f.Followee == userID {
			counts.Followers++
		}
		if f.Follower == userID {
			counts.Following++
		}
	}
	return counts, nil
}

func (s *Store) DeleteFollowsByUser(_ context.Context, userID bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteWhere(s.follows, func(f *models.Follow) bool {
		return f.Follower == userID || f.Followee == userID
	}), nil
}

// =============================================================================
// Notifications
// =============================================================================

func (s *Store) InsertNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertNotification"); err != nil {
		return err
	}
	ensureID(&n.ID)
	if _, ok := s.notifications[n.ID]; ok {
		return database.ErrDuplicate
	}
	s.notifications[n.ID] = cloneNotification(n)
	return nil
}

func (s *Store) ListNotifications(_ context.Context, recipient bson.ObjectID, limit int) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Notification{}
	for _, n := range s.notifications {
		if n.Recipient == recipient {
			out = append(out, cloneNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return truncate(out, limit), nil
}

func (s *Store) CountUnread(_ context.Context, recipient bson.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, n := range s.notifications {
		if n.Recipient == recipient && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id, recipient bson.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.Recipient != recipient {
		return nil, database.ErrNotFound
	}
	n.Read = true
	return cloneNotification(n), nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, recipient bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var modified int64
	for _, n := range s.notifications {
		if n.Recipient == recipient && !n.Read {
			n.Read = true
			modified++
		}
	}
	return modified, nil
}

func (s *Store) DeleteNotificationsByConnection(_ context.Context, connectionID bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("DeleteNotificationsByConnection"); err != nil {
		return 0, err
	}
	return deleteWhere(s.notifications, func(n *models.Notification) bool {
		return n.Connection != nil && *n.Connection == connectionID
	}), nil
}

func (s *Store) DeleteNotificationsByUser(_ context.Context, userID bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteWhere(s.notifications, func(n *models.Notification) bool {
		return n.Recipient == userID || n.Sender == userID
	}), nil
}

// =============================================================================
// Copy helpers
// =============================================================================

func deleteWhere[T any](m map[bson.ObjectID]*T, match func(*T) bool) int64 {
	var n int64
	for id, v := range m {
		if match(v) {
			delete(m, id)
			n++
		}
	}
	return n
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Favorites = slices.Clone(u.Favorites)
	if cp.Favorites == nil {
		cp.Favorites = []bson.ObjectID{}
	}
	return &cp
}

func cloneMovie(m *models.Movie) *models.Movie {
	cp := *m
	cp.Genres = slices.Clone(m.Genres)
	cp.Actors = slices.Clone(m.Actors)
	return &cp
}

func cloneBook(b *models.Book) *models.Book {
	cp := *b
	cp.Genres = slices.Clone(b.Genres)
	return &cp
}

func cloneConnection(c *models.Connection) *models.Connection {
	cp := *c
	cp.Tags = slices.Clone(c.Tags)
	cp.Likes = slices.Clone(c.Likes)
	cp.Favorites = slices.Clone(c.Favorites)
	if c.MovieRef != nil {
		id := *c.MovieRef
		cp.MovieRef = &id
	}
	if c.BookRef != nil {
		id := *c.BookRef
		cp.BookRef = &id
	}
	return &cp
}

func cloneNotification(n *models.Notification) *models.Notification {
	cp := *n
	if n.Connection != nil {
		id := *n.Connection
		cp.Connection = &id
	}
	return &cp
}
