// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package models

import (
	"slices"
	"strings"
	"time"
)

// MovieInput carries the movie fields supplied with a new connection.
type MovieInput struct {
	Title          string
	Genres         []string
	Director       string
	Actors         []string
	Year           int
	Synopsis       string
	PosterPath     string
	PosterPublicID string
}

// BookInput carries the book fields supplied with a new connection.
type BookInput struct {
	Title           string
	Genres          []string
	Author          string
	ISBN            string
	PublicationYear int
	Synopsis        string
	CoverPath       string
	CoverPublicID   string
}

// MergeResult describes what a merge did.
//
// Created is set when there was no existing record. Changed is set when the
// returned record differs from the existing one. DetailsChanged covers the
// text, list, and number fields (and a missing title key) only; the image
// is claimed separately so concurrent writers cannot both win it.
// ImageAccepted is false when an image was supplied but the record already
// had one; the caller owns the rejected upload and should delete it.
type MergeResult struct {
	Created        bool
	Changed        bool
	DetailsChanged bool
	ImageAccepted  bool
}

// MergeMovie applies the find-or-create policy for movies:
//   - no existing record: the input becomes a new record keyed by its title
//   - existing record: non-empty text, list, and number fields overwrite
//     values that differ
//   - poster: set only when the existing record has none (first poster wins)
//
// existing is never modified.
func MergeMovie(existing *Movie, in MovieInput, now time.Time) (Movie, MergeResult) {
	if existing == nil {
		title := strings.TrimSpace(in.Title)
		m := Movie{
			Title:          title,
			TitleKey:       TitleKey(title),
			Genres:         cloneOrEmpty(in.Genres),
			Director:       in.Director,
			Actors:         cloneOrEmpty(in.Actors),
			Year:           in.Year,
			Synopsis:       in.Synopsis,
			PosterPath:     in.PosterPath,
			PosterPublicID: in.PosterPublicID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return m, MergeResult{Created: true, Changed: true, ImageAccepted: in.PosterPath != ""}
	}

	m := *existing
	m.Genres = slices.Clone(existing.Genres)
	m.Actors = slices.Clone(existing.Actors)

	var res MergeResult
	res.DetailsChanged = ApplyMovieDetails(&m, in)
	if m.TitleKey == "" {
		m.TitleKey = TitleKey(m.Title)
		res.DetailsChanged = true
	}
	res.Changed = res.DetailsChanged

	if in.PosterPath != "" && m.PosterPath == "" {
		m.PosterPath = in.PosterPath
		m.PosterPublicID = in.PosterPublicID
		res.ImageAccepted = true
		res.Changed = true
	}
	if res.Changed {
		m.UpdatedAt = now
	}
	return m, res
}

// MergeBook applies the same policy as MergeMovie, with the cover as the
// first-wins image.
func MergeBook(existing *Book, in BookInput, now time.Time) (Book, MergeResult) {
	if existing == nil {
		title := strings.TrimSpace(in.Title)
		b := Book{
			Title:           title,
			TitleKey:        TitleKey(title),
			Genres:          cloneOrEmpty(in.Genres),
			Author:          in.Author,
			ISBN:            in.ISBN,
			PublicationYear: in.PublicationYear,
			Synopsis:        in.Synopsis,
			CoverPath:       in.CoverPath,
			CoverPublicID:   in.CoverPublicID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return b, MergeResult{Created: true, Changed: true, ImageAccepted: in.CoverPath != ""}
	}

	b := *existing
	b.Genres = slices.Clone(existing.Genres)

	var res MergeResult
	res.DetailsChanged = ApplyBookDetails(&b, in)
	if b.TitleKey == "" {
		b.TitleKey = TitleKey(b.Title)
		res.DetailsChanged = true
	}
	res.Changed = res.DetailsChanged

	if in.CoverPath != "" && b.CoverPath == "" {
		b.CoverPath = in.CoverPath
		b.CoverPublicID = in.CoverPublicID
		res.ImageAccepted = true
		res.Changed = true
	}
	if res.Changed {
		b.UpdatedAt = now
	}
	return b, res
}

// ApplyMovieDetails copies the non-empty text, list, and number fields of in
// onto m and reports whether any value changed. The poster is left alone.
func ApplyMovieDetails(m *Movie, in MovieInput) bool {
	changed := mergeList(&m.Genres, in.Genres)
	changed = mergeText(&m.Director, in.Director) || changed
	changed = mergeList(&m.Actors, in.Actors) || changed
	changed = mergeInt(&m.Year, in.Year) || changed
	changed = mergeText(&m.Synopsis, in.Synopsis) || changed
	return changed
}

// ApplyBookDetails is ApplyMovieDetails for books; the cover is left alone.
func ApplyBookDetails(b *Book, in BookInput) bool {
	changed := mergeList(&b.Genres, in.Genres)
	changed = mergeText(&b.Author, in.Author) || changed
	changed = mergeText(&b.ISBN, in.ISBN) || changed
	changed = mergeInt(&b.PublicationYear, in.PublicationYear) || changed
	changed = mergeText(&b.Synopsis, in.Synopsis) || changed
	return changed
}

func mergeText(dst *string, v string) bool {
	if v == "" || *dst == v {
		return false
	}
	*dst = v
	return true
}

func mergeInt(dst *int, v int) bool {
	if v == 0 || *dst == v {
		return false
	}
	*dst = v
	return true
}

func mergeList(dst *[]string, v []string) bool {
	if len(v) == 0 || slices.Equal(*dst, v) {
		return false
	}
	*dst = slices.Clone(v)
	return true
}

func cloneOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// SplitList splits a comma-separated form value, trimming entries and
// dropping empty ones.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
