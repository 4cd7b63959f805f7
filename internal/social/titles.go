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
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/models"
)

// resolveMovie finds the movie by title and merges the input into it, or
// creates it. accepted reports whether a supplied poster was kept.
func (s *Service) resolveMovie(ctx context.Context, in models.MovieInput) (*models.Movie, bool, error) {
	// Two attempts: a concurrent insert of the same title makes the first
	// one lose on the unique index, and the second merges into the winner.
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.store.FindMovieByTitle(ctx, in.Title)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, false, fmt.Errorf("find movie: %w", err)
		}

		now := s.now()
		merged, res := models.MergeMovie(existing, in, now)
		if res.Created {
			merged.ID = bson.NewObjectID()
			err = s.store.InsertMovie(ctx, &merged)
			if errors.Is(err, database.ErrDuplicate) {
				continue
			}
			if err != nil {
				return nil, false, fmt.Errorf("save movie: %w", err)
			}
			return &merged, res.ImageAccepted, nil
		}

		if !res.Changed {
			return &merged, false, nil
		}
		return s.updateMovie(ctx, &merged, res, in, now)
	}
	return nil, false, fmt.Errorf("save movie %q: %w", in.Title, database.ErrDuplicate)
}

// resolveBook is resolveMovie for books, with the cover as the image.
func (s *Service) resolveBook(ctx context.Context, in models.BookInput) (*models.Book, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.store.FindBookByTitle(ctx, in.Title)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, false, fmt.Errorf("find book: %w", err)
		}

		now := s.now()
		merged, res := models.MergeBook(existing, in, now)
		if res.Created {
			merged.ID = bson.NewObjectID()
			err = s.store.InsertBook(ctx, &merged)
			if errors.Is(err, database.ErrDuplicate) {
				continue
			}
			if err != nil {
				return nil, false, fmt.Errorf("save book: %w", err)
			}
			return &merged, res.ImageAccepted, nil
		}

		if !res.Changed {
			return &merged, false, nil
		}
		return s.updateBook(ctx, &merged, res, in, now)
	}
	return nil, false, fmt.Errorf("save book %q: %w", in.Title, database.ErrDuplicate)
}

// updateMovie writes a merge into an existing movie. Detail fields are set
// individually and the poster is claimed only while the record has none, so
// the first poster wins even under concurrent creates.
func (s *Service) updateMovie(ctx context.Context, merged *models.Movie, res models.MergeResult, in models.MovieInput, now time.Time) (*models.Movie, bool, error) {
	defer s.movies.Delete(merged.ID.Hex())

	if res.DetailsChanged {
		if err := s.store.UpdateMovieDetails(ctx, merged.ID, in, now); err != nil {
			return nil, false, fmt.Errorf("update movie: %w", err)
		}
	}
	if !res.ImageAccepted {
		return merged, false, nil
	}
	won, err := s.store.ClaimMoviePoster(ctx, merged.ID, in.PosterPath, in.PosterPublicID, now)
	if err != nil {
		return nil, false, fmt.Errorf("set movie poster: %w", err)
	}
	if won {
		return merged, true, nil
	}
	// Another request set one between our read and the claim.
	current, err := s.store.GetMovie(ctx, merged.ID)
	if err != nil {
		return nil, false, fmt.Errorf("reload movie: %w", err)
	}
	return current, false, nil
}

// updateBook writes a merge into an existing book. Detail fields are set
// individually and the cover is claimed only while the record has none, so
// the first cover wins even under concurrent creates.
func (s *Service) updateBook(ctx context.Context, merged *models.Book, res models.MergeResult, in models.BookInput, now time.Time) (*models.Book, bool, error) {
	defer s.books.Delete(merged.ID.Hex())

	if res.DetailsChanged {
		if err := s.store.UpdateBookDetails(ctx, merged.ID, in, now); err != nil {
			return nil, false, fmt.Errorf("update book: %w", err)
		}
	}
	if !res.ImageAccepted {
		return merged, false, nil
	}
	won, err := s.store.ClaimBookCover(ctx, merged.ID, in.CoverPath, in.CoverPublicID, now)
	if err != nil {
		return nil, false, fmt.Errorf("set book cover: %w", err)
	}
	if won {
		return merged, true, nil
	}
	// Another request set one between our read and the claim.
	current, err := s.store.GetBook(ctx, merged.ID)
	if err != nil {
		return nil, false, fmt.Errorf("reload book: %w", err)
	}
	return current, false, nil
}

// Movie returns a movie by ID through the detail cache.
func (s *Service) Movie(ctx context.Context, id bson.ObjectID) (*models.Movie, error) {
	m, err := s.movies.GetOrLoad(ctx, id.Hex(), func(ctx context.Context) (*models.Movie, error) {
		return s.store.GetMovie(ctx, id)
	})
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(MsgMovieNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load movie: %w", err)
	}
	return m, nil
}

// Book returns a book by ID through the detail cache.
func (s *Service) Book(ctx context.Context, id bson.ObjectID) (*models.Book, error) {
	b, err := s.books.GetOrLoad(ctx, id.Hex(), func(ctx context.Context) (*models.Book, error) {
		return s.store.GetBook(ctx, id)
	})
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(MsgBookNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}
	return b, nil
}

// ConnectionsByMovie lists the connections referencing a movie.
func (s *Service) ConnectionsByMovie(ctx context.Context, movieID bson.ObjectID) ([]*models.ConnectionView, error) {
	if _, err := s.Movie(ctx, movieID); err != nil {
		return nil, err
	}
	return s.listViews(ctx, database.ConnectionQuery{MovieRef: &movieID})
}

// ConnectionsByBook lists the connections referencing a book.
func (s *Service) ConnectionsByBook(ctx context.Context, bookID bson.ObjectID) ([]*models.ConnectionView, error) {
	if _, err := s.Book(ctx, bookID); err != nil {
		return nil, err
	}
	return s.listViews(ctx, database.ConnectionQuery{BookRef: &bookID})
}

// SearchMovies returns movies whose title starts with query, ignoring case.
func (s *Service) SearchMovies(ctx context.Context, query string) ([]*models.Movie, error) {
	movies, err := s.store.SearchMovies(ctx, strings.TrimSpace(query), s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	if movies == nil {
		movies = []*models.Movie{}
	}
	return movies, nil
}

// SearchBooks returns books whose title starts with query, ignoring case.
func (s *Service) SearchBooks(ctx context.Context, query string) ([]*models.Book, error) {
	books, err := s.store.SearchBooks(ctx, strings.TrimSpace(query), s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	if books == nil {
		books = []*models.Book{}
	}
	return books, nil
}
