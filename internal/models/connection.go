// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Connection is the stored link between a user, an optional movie, an
// optional book, and free-text context. Likes and Favorites are sets.
type Connection struct {
	ID                 bson.ObjectID   `json:"_id" bson:"_id,omitempty"`
	UserRef            bson.ObjectID   `json:"userRef" bson:"userRef"`
	MovieRef           *bson.ObjectID  `json:"movieRef,omitempty" bson:"movieRef,omitempty"`
	BookRef            *bson.ObjectID  `json:"bookRef,omitempty" bson:"bookRef,omitempty"`
	Context            string          `json:"context" bson:"context"`
	Tags               []string        `json:"tags" bson:"tags"`
	ScreenshotURL      string          `json:"screenshotUrl" bson:"screenshotUrl"`
	ScreenshotPublicID string          `json:"screenshotPublicId,omitempty" bson:"screenshotPublicId,omitempty"`
	Likes              []bson.ObjectID `json:"likes" bson:"likes"`
	Favorites          []bson.ObjectID `json:"favorites" bson:"favorites"`
	CreatedAt          time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// HasSubject reports whether the connection references a movie, a book, or
// carries non-empty context.
func (c *Connection) HasSubject() bool {
	return c.MovieRef != nil || c.BookRef != nil || c.Context != ""
}

// ConnectionView is a Connection with its references populated. It is the
// shape returned by every connection endpoint and by the feed projection.
type ConnectionView struct {
	ID                 bson.ObjectID   `json:"_id" bson:"_id"`
	UserRef            *UserSummary    `json:"userRef" bson:"userRef,omitempty"`
	MovieRef           *Movie          `json:"movieRef" bson:"movieRef,omitempty"`
	BookRef            *Book           `json:"bookRef" bson:"bookRef,omitempty"`
	Context            string          `json:"context" bson:"context"`
	Tags               []string        `json:"tags" bson:"tags"`
	ScreenshotURL      string          `json:"screenshotUrl" bson:"screenshotUrl"`
	ScreenshotPublicID string          `json:"screenshotPublicId,omitempty" bson:"screenshotPublicId,omitempty"`
	Likes              []bson.ObjectID `json:"likes" bson:"likes"`
	Favorites          []bson.ObjectID `json:"favorites" bson:"favorites"`
	CreatedAt          time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// NewConnectionView copies c and attaches the populated references.
func NewConnectionView(c *Connection, user *UserSummary, movie *Movie, book *Book) *ConnectionView {
	return &ConnectionView{
		ID:                 c.ID,
		UserRef:            user,
		MovieRef:           movie,
		BookRef:            book,
		Context:            c.Context,
		Tags:               nonNilStrings(c.Tags),
		ScreenshotURL:      c.ScreenshotURL,
		ScreenshotPublicID: c.ScreenshotPublicID,
		Likes:              nonNilIDs(c.Likes),
		Favorites:          nonNilIDs(c.Favorites),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// FeedFilter holds the optional feed filters. Empty fields are ignored.
type FeedFilter struct {
	Tags       []string
	MovieGenre string
	Director   string
	Actor      string
	BookGenre  string
	Author     string
}

// IsEmpty reports whether no filter is set.
func (f FeedFilter) IsEmpty() bool {
	return len(f.Tags) == 0 && f.MovieGenre == "" && f.Director == "" &&
		f.Actor == "" && f.BookGenre == "" && f.Author == ""
}

// FeedPage is one page of the filtered feed.
type FeedPage struct {
	Connections []*ConnectionView `json:"connections"`
	Page        int               `json:"page"`
	Pages       int               `json:"pages"`
	Total       int64             `json:"total"`
}

// PageCount returns ceil(total/pageSize).
func PageCount(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilIDs(ids []bson.ObjectID) []bson.ObjectID {
	if ids == nil {
		return []bson.ObjectID{}
	}
	return ids
}
