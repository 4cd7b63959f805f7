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
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/outbox"
)

// Effect kinds recorded in the outbox. Every effect is idempotent.
const (
	EffectNotify              = "notify"
	EffectAddUserFavorite     = "user_favorite_add"
	EffectRemoveUserFavorite  = "user_favorite_remove"
	EffectDeleteAsset         = "delete_asset"
	EffectPullFavorites       = "pull_favorites"
	EffectDeleteComments      = "delete_comments"
	EffectDeleteNotifications = "delete_notifications"
	EffectPurgeUser           = "purge_user"
)

type notifyPayload struct {
	Notification models.Notification `json:"notification"`
}

type favoritePayload struct {
	UserID       bson.ObjectID `json:"userId"`
	ConnectionID bson.ObjectID `json:"connectionId"`
}

type assetPayload struct {
	PublicID string `json:"publicId"`
}

type connectionPayload struct {
	ConnectionID bson.ObjectID `json:"connectionId"`
}

type userPayload struct {
	UserID bson.ObjectID `json:"userId"`
}

// Dispatcher executes recorded effects. The retry loop uses the same
// dispatcher as the inline runner.
func (s *Service) Dispatcher() outbox.Dispatcher {
	return outbox.DispatcherFunc(s.applyEffect)
}

func (s *Service) applyEffect(ctx context.Context, e *outbox.Entry) error {
	switch e.Kind {
	case EffectNotify:
		var p notifyPayload
		if err := e.UnmarshalPayload(&p); err != nil {
			return err
		}
		live, err := s.notificationStillRelevant(ctx, &p.Notification)
		if err != nil || !live {
			return err
		}
		return s.deliverNotification(ctx, &p.Notification)

	case EffectAddUserFavorite, EffectRemoveUserFavorite:
		var p favoritePayload
		if err := e.UnmarshalPayload(&p); err != nil {
			return err
		}
		add := e.Kind == EffectAddUserFavorite
		// A replay must not override a later toggle or a deleted connection:
		// the user list follows whatever the connection says now.
		listed, err := s.connectionListsFavorite(ctx, p.ConnectionID, p.UserID)
		if err != nil {
			return err
		}
		if listed != add {
			logging.Ctx(ctx).Debug().
				Str("effect", e.Kind).
				Str("connection_id", p.ConnectionID.Hex()).
				Msg("Skipping stale favorite sync")
			return nil
		}
		if add {
			err = s.store.AddUserFavorite(ctx, p.UserID, p.ConnectionID)
		} else {
			err = s.store.RemoveUserFavorite(ctx, p.UserID, p.ConnectionID)
		}
		// The account is gone; nothing left to sync.
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err

	case EffectDeleteAsset:
		var p assetPayload
		if err := e.UnmarshalPayload(&p); err != nil {
			return err
		}
		return s.media.Delete(ctx, p.PublicID)

	case EffectPullFavorites:
		var p connectionPayload
		if err := e.UnmarshalPayload(&p); err != nil {
			return err
		}
		_, err := s.store.PullFavoriteFromAllUsers(ctx, p.ConnectionID)
		return err

	case EffectDeleteComments:
		var p connectionPayload
		if err := e.UnmarshalPayload(&p); err != nil {
			return err
		}
		_, err := s.store.DeleteCommentsByConnection(ctx, p.ConnectionID)
		return err

	case EffectDeleteNotifications:
		var p connectionPayload
		if err := e.UnmarshalPayload(&p); err != nil {
			return err
		}
		_, err := s.store.DeleteNotificationsByConnection(ctx, p.ConnectionID)
		return err

	case EffectPurgeUser:
		var p userPayload
		if err := e.UnmarshalPayload(&p); err != nil {
			return err
		}
		return s.purgeUserData(ctx, p.UserID)

	default:
		return fmt.Errorf("unknown effect kind %q", e.Kind)
	}
}

// connectionListsFavorite reports whether the connection exists and has
// userID in its favorites.
func (s *Service) connectionListsFavorite(ctx context.Context, connID, userID bson.ObjectID) (bool, error) {
	conn, err := s.store.GetConnection(ctx, connID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load connection: %w", err)
	}
	return containsID(conn.Favorites, userID), nil
}

// notificationStillRelevant is false once the referenced connection, the
// sender, or the recipient has been deleted.
func (s *Service) notificationStillRelevant(ctx context.Context, n *models.Notification) (bool, error) {
	if n.Connection != nil {
		_, err := s.store.GetConnection(ctx, *n.Connection)
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("load connection: %w", err)
		}
	}
	for _, id := range []bson.ObjectID{n.Sender, n.Recipient} {
		_, err := s.store.GetUserByID(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("load user: %w", err)
		}
	}
	return true, nil
}

// deliverNotification stores the notification and pushes it to the event
// bus. A duplicate ID means an earlier attempt already stored it.
func (s *Service) deliverNotification(ctx context.Context, n *models.Notification) error {
	err := s.store.InsertNotification(ctx, n)
	if errors.Is(err, database.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	if s.events == nil {
		return nil
	}
	senders, err := s.store.GetUserSummaries(ctx, []bson.ObjectID{n.Sender})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to load notification sender")
	}
	view := models.NewNotificationView(n, senders[n.Sender])
	if err := s.events.PublishNotification(ctx, view); err != nil {
		// Realtime delivery is best effort; the notification is stored.
		logging.Ctx(ctx).Warn().Err(err).
			Str("notification_id", n.ID.Hex()).
			Msg("Failed to publish notification event")
	}
	return nil
}

func (s *Service) purgeUserData(ctx context.Context, userID bson.ObjectID) error {
	var errs []error
	if _, err := s.store.DeleteCommentsByUser(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("delete comments: %w", err))
	}
	if _, err := s.store.DeleteFollowsByUser(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("delete follows: %w", err))
	}
	if _, err := s.store.DeleteNotificationsByUser(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("delete notifications: %w", err))
	}
	if err := s.store.PullUserFromAllSets(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("pull from likes and favorites: %w", err))
	}
	return errors.Join(errs...)
}

// notify records a notification effect. Failures are logged by the runner.
func (s *Service) notify(ctx context.Context, n models.Notification) {
	n.ID = bson.NewObjectID()
	n.Type = n.Type.Normalize()
	n.CreatedAt = s.now()
	_ = s.effects.Run(ctx, EffectNotify, notifyPayload{Notification: n})
}

// discardAsset records deletion of an image that is no longer referenced.
func (s *Service) discardAsset(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	_ = s.effects.Run(ctx, EffectDeleteAsset, assetPayload{PublicID: publicID})
}
