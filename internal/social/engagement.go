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

// ToggleLike likes the connection, or unlikes it when the caller already
// does. Liking someone else's connection notifies its owner.
func (s *Service) ToggleLike(ctx context.Context, userID, id bson.ObjectID) (*models.ConnectionView, error) {
	conn, err := s.getConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if containsID(conn.Likes, userID) {
		if err := s.toggle(ctx, id, database.SetLikes, userID, false); err != nil {
			return nil, err
		}
		return s.connectionView(ctx, id)
	}

	if err := s.toggle(ctx, id, database.SetLikes, userID, true); err != nil {
		return nil, err
	}
	if conn.UserRef != userID {
		s.notify(ctx, models.Notification{
			Recipient:  conn.UserRef,
			Sender:     userID,
			Type:       models.NotificationLike,
			Message:    user.Username + " liked your connection",
			Link:       models.ConnectionLink(id),
			Connection: &id,
		})
	}
	return s.connectionView(ctx, id)
}

// ToggleFavorite favorites or unfavorites the connection and keeps the
// caller's own favorites list in sync.
func (s *Service) ToggleFavorite(ctx context.Context, userID, id bson.ObjectID) (*models.ConnectionView, error) {
	conn, err := s.getConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload := favoritePayload{UserID: userID, ConnectionID: id}
	if containsID(conn.Favorites, userID) {
		if err := s.toggle(ctx, id, database.SetFavorites, userID, false); err != nil {
			return nil, err
		}
		_ = s.effects.Run(ctx, EffectRemoveUserFavorite, payload)
		return s.connectionView(ctx, id)
	}

	if err := s.toggle(ctx, id, database.SetFavorites, userID, true); err != nil {
		return nil, err
	}
	_ = s.effects.Run(ctx, EffectAddUserFavorite, payload)
	if conn.UserRef != userID {
		s.notify(ctx, models.Notification{
			Recipient:  conn.UserRef,
			Sender:     userID,
			Type:       models.NotificationFavorite,
			Message:    user.Username + " favorited your connection",
			Link:       models.ConnectionLink(id),
			Connection: &id,
		})
	}
	return s.connectionView(ctx, id)
}

func (s *Service) toggle(ctx context.Context, id bson.ObjectID, field database.SetField, userID bson.ObjectID, add bool) error {
	var err error
	if add {
		err = s.store.AddToSet(ctx, id, field, userID)
	} else {
		err = s.store.PullFromSet(ctx, id, field, userID)
	}
	if errors.Is(err, database.ErrNotFound) {
		return notFoundError(MsgConnectionNotFound)
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	return nil
}
