// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Movie is shared reference data, deduplicated by TitleKey.
type Movie struct {
	ID             bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title          string        `json:"title" bson:"title"`
	TitleKey       string        `json:"-" bson:"titleKey"`
	Genres         []string      `json:"genres" bson:"genres"`
	Director       string        `json:"director" bson:"director"`
	Actors         []string      `json:"actors" bson:"actors"`
	Year           int           `json:"year,omitempty" bson:"year,omitempty"`
	Synopsis       string        `json:"synopsis" bson:"synopsis"`
	PosterPath     string        `json:"posterPath" bson:"posterPath"`
	PosterPublicID string        `json:"posterPublicId,omitempty" bson:"posterPublicId,omitempty"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Book is shared reference data, deduplicated by TitleKey.
type Book struct {
	ID              bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title           string        `json:"title" bson:"title"`
	TitleKey        string        `json:"-" bson:"titleKey"`
	Genres          []string      `json:"genres" bson:"genres"`
	Author          string        `json:"author" bson:"author"`
	CoverPath       string        `json:"coverPath" bson:"coverPath"`
	CoverPublicID   string        `json:"coverPublicId,omitempty" bson:"coverPublicId,omitempty"`
	ISBN            string        `json:"isbn,omitempty" bson:"isbn,omitempty"`
	PublicationYear int           `json:"publicationYear,omitempty" bson:"publicationYear,omitempty"`
	Synopsis        string        `json:"synopsis" bson:"synopsis"`
	CreatedAt       time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// TitleKey normalizes a title for case-insensitive deduplication:
// surrounding space trimmed, inner runs of whitespace collapsed, lowercased.
func TitleKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
