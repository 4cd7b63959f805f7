// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MaxCommentLength is the maximum comment length in characters after trimming.
const MaxCommentLength = 1000

// Comment belongs to exactly one Connection.
type Comment struct {
	ID         bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Text       string        `json:"text" bson:"text"`
	User       bson.ObjectID `json:"user" bson:"user"`
	Connection bson.ObjectID `json:"connection" bson:"connection"`
	CreatedAt  time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// CommentView is a Comment with the author populated.
type CommentView struct {
	ID         bson.ObjectID `json:"_id"`
	Text       string        `json:"text"`
	User       *UserSummary  `json:"user"`
	Connection bson.ObjectID `json:"connection"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// NewCommentView attaches the author to c.
func NewCommentView(c *Comment, author *UserSummary) *CommentView {
	return &CommentView{
		ID:         c.ID,
		Text:       c.Text,
		User:       author,
		Connection: c.Connection,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
