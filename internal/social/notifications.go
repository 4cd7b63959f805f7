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

// Notifications returns the caller's latest notifications and unread count.
func (s *Service) Notifications(ctx context.Context, userID bson.ObjectID) (*models.NotificationList, error) {
	list, err := s.store.ListNotifications(ctx, userID, s.notificationLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	ids := make([]bson.ObjectID, 0, len(list))
	for _, n := range list {
		ids = append(ids, n.Sender)
	}
	senders, err := s.store.GetUserSummaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load senders: %w", err)
	}

	views := make([]*models.NotificationView, 0, len(list))
	for _, n := range list {
		views = append(views, models.NewNotificationView(n, senders[n.Sender]))
	}
	return &models.NotificationList{Notifications: views, Unread: unread}, nil
}

// MarkNotificationRead marks one of the caller's notifications read.
// Notifications addressed to someone else are reported as missing.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, id bson.ObjectID) (*models.NotificationView, error) {
	n, err := s.store.MarkNotificationRead(ctx, id, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(MsgNotificationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	senders, err := s.store.GetUserSummaries(ctx, []bson.ObjectID{n.Sender})
	if err != nil {
		return nil, fmt.Errorf("load sender: %w", err)
	}
	return models.NewNotificationView(n, senders[n.Sender]), nil
}

// MarkAllNotificationsRead marks every unread notification of the caller.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID bson.ObjectID) (*models.ReadAllResponse, error) {
	n, err := s.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("mark all read: %w", err)
	}
	return &models.ReadAllResponse{Message: MsgAllRead, Modified: n}, nil
}
