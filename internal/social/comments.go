// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package social

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/authz"
	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/models"
)

// Comments lists a connection's comments, oldest first.
func (s *Service) Comments(ctx context.Context, connectionID bson.ObjectID) ([]*models.CommentView, error) {
	if _, err := s.getConnection(ctx, connectionID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	ids := make([]bson.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.User)
	}
	authors, err := s.store.GetUserSummaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load comment authors: %w", err)
	}

	views := make([]*models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.NewCommentView(c, authors[c.User]))
	}
	return views, nil
}

// AddComment posts a comment and notifies the connection owner.
func (s *Service) AddComment(ctx context.Context, userID, connectionID bson.ObjectID, text string) (*models.CommentView, error) {
	text, err := commentText(text)
	if err != nil {
		return nil, err
	}
	conn, err := s.getConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	user, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &models.Comment{
		ID:         bson.NewObjectID(),
		Text:       text,
		User:       userID,
		Connection: connectionID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	if conn.UserRef != userID {
		s.notify(ctx, models.Notification{
			Recipient:  conn.UserRef,
			Sender:     userID,
			Type:       models.NotificationComment,
			Message:    user.Username + " commented on your connection",
			Link:       models.ConnectionLink(connectionID),
			Connection: &connectionID,
		})
	}
	return models.NewCommentView(c, user.Summary()), nil
}

// UpdateComment replaces a comment's text. Author only.
func (s *Service) UpdateComment(ctx context.Context, userID, commentID bson.ObjectID, text string) (*models.CommentView, error) {
	text, err := commentText(text)
	if err != nil {
		return nil, err
	}
	c, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !s.authz.Can(userID.Hex(), authz.ResourceComment, authz.ActionUpdate, c.User.Hex()) {
		return nil, unauthorizedError(MsgCommentForbidden)
	}

	updated, err := s.store.UpdateCommentText(ctx, commentID, text, s.now())
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(MsgCommentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	authors, err := s.store.GetUserSummaries(ctx, []bson.ObjectID{updated.User})
	if err != nil {
		return nil, fmt.Errorf("load comment author: %w", err)
	}
	return models.NewCommentView(updated, authors[updated.User]), nil
}

// DeleteComment removes a comment. Allowed for the author and admins.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID bson.ObjectID) error {
	c, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !s.authz.Can(userID.Hex(), authz.ResourceComment, authz.ActionDelete, c.User.Hex()) {
		return unauthorizedError(MsgCommentForbidden)
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *Service) getComment(ctx context.Context, id bson.ObjectID) (*models.Comment, error) {
	c, err := s.store.GetComment(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(MsgCommentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	return c, nil
}

func commentText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(text); n == 0 || n > models.MaxCommentLength {
		return "", validationError(MsgCommentText)
	}
	return text, nil
}
