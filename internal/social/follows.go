// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package social

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/models"
)

// Follow makes followerID follow followeeID and notifies the followee.
func (s *Service) Follow(ctx context.Context, followerID, followeeID bson.ObjectID) (*models.Follow, error) {
	if followerID == followeeID {
		return nil, validationError(MsgCannotFollowSelf)
	}
	if _, err := s.store.GetUserByID(ctx, followeeID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFoundError(MsgUserNotFound)
		}
		return nil, fmt.Errorf("load followee: %w", err)
	}
	follower, err := s.actor(ctx, followerID)
	if err != nil {
		return nil, err
	}

	_, err = s.store.GetFollow(ctx, followerID, followeeID)
	switch {
	case err == nil:
		return nil, conflictError(MsgAlreadyFollowing)
	case !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("check follow: %w", err)
	}

	f := &models.Follow{
		ID:        bson.NewObjectID(),
		Follower:  followerID,
		Followee:  followeeID,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertFollow(ctx, f); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, conflictError(MsgAlreadyFollowing)
		}
		return nil, fmt.Errorf("insert follow: %w", err)
	}

	s.notify(ctx, models.Notification{
		Recipient: followeeID,
		Sender:    followerID,
		Type:      models.NotificationNewFollower,
		Message:   follower.Username + " started following you",
		Link:      models.ProfileLink(followerID),
	})
	return f, nil
}

// Unfollow removes the follow edge.
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID bson.ObjectID) error {
	err := s.store.DeleteFollow(ctx, followerID, followeeID)
	if errors.Is(err, database.ErrNotFound) {
		return notFoundError(MsgNotFollowing)
	}
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// Followers lists the users following userID.
func (s *Service) Followers(ctx context.Context, userID bson.ObjectID) ([]*models.UserSummary, error) {
	ids, err := s.store.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return s.summaries(ctx, ids)
}

// Following lists the users userID follows.
func (s *Service) Following(ctx context.Context, userID bson.ObjectID) ([]*models.UserSummary, error) {
	ids, err := s.store.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return s.summaries(ctx, ids)
}

// FollowStatus reports whether viewerID follows userID.
func (s *Service) FollowStatus(ctx context.Context, viewerID, userID bson.ObjectID) (*models.FollowStatus, error) {
	if viewerID == userID {
		return &models.FollowStatus{IsSelf: true}, nil
	}
	_, err := s.store.GetFollow(ctx, viewerID, userID)
	switch {
	case err == nil:
		return &models.FollowStatus{IsFollowing: true}, nil
	case errors.Is(err, database.ErrNotFound):
		return &models.FollowStatus{}, nil
	default:
		return nil, fmt.Errorf("check follow: %w", err)
	}
}

// FollowCounts returns follower and following totals for a user.
func (s *Service) FollowCounts(ctx context.Context, userID bson.ObjectID) (*models.FollowCounts, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFoundError(MsgUserNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	counts, err := s.store.CountFollows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count follows: %w", err)
	}
	return &counts, nil
}

// summaries resolves IDs to public user fields, keeping order and skipping
// deleted accounts.
func (s *Service) summaries(ctx context.Context, ids []bson.ObjectID) ([]*models.UserSummary, error) {
	out := make([]*models.UserSummary, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	byID, err := s.store.GetUserSummaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, id := range ids {
		if u := byID[id]; u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}
