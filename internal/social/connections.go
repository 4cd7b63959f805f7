// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package social

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/authz"
	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/models"
)

// ConnectionInput is a new connection as submitted by the form. List
// fields are comma-separated.
type ConnectionInput struct {
	MovieTitle    string
	MovieGenres   string
	Director      string
	Actors        string
	MovieYear     string
	MovieSynopsis string

	BookTitle       string
	BookGenres      string
	Author          string
	ISBN            string
	PublicationYear string
	BookSynopsis    string

	Context string
	Tags    string

	MoviePoster *media.Upload
	BookCover   *media.Upload
	Screenshot  *media.Upload
}

// ConnectionEdit changes an existing connection. Nil fields are unchanged.
type ConnectionEdit struct {
	Context    *string
	Tags       *string
	Screenshot *media.Upload
}

// CreateConnection validates the input, resolves the movie and book by
// title, stores uploaded images, and inserts the connection.
func (s *Service) CreateConnection(ctx context.Context, userID bson.ObjectID, in ConnectionInput) (*models.ConnectionView, error) {
	movieTitle := strings.TrimSpace(in.MovieTitle)
	bookTitle := strings.TrimSpace(in.BookTitle)
	text := strings.TrimSpace(in.Context)

	if s.allowContextOnly {
		if movieTitle == "" && bookTitle == "" && text == "" {
			return nil, validationError(MsgSubjectRequired)
		}
	} else if movieTitle == "" || bookTitle == "" {
		return nil, validationError(MsgTitlesRequired)
	}

	tags, err := s.parseTags(in.Tags)
	if err != nil {
		return nil, err
	}
	movieYear, err := parseYear("movieYear", in.MovieYear)
	if err != nil {
		return nil, err
	}
	pubYear, err := parseYear("publicationYear", in.PublicationYear)
	if err != nil {
		return nil, err
	}

	if _, err := s.actor(ctx, userID); err != nil {
		return nil, err
	}

	// Every stored image is released again if the connection is not created.
	var stored []string
	created := false
	defer func() {
		if created {
			return
		}
		for _, id := range stored {
			s.discardAsset(ctx, id)
		}
	}()
	save := func(up *media.Upload) (*media.Asset, error) {
		if up == nil {
			return nil, nil
		}
		a, err := s.media.Save(ctx, up)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		stored = append(stored, a.PublicID)
		return a, nil
	}

	conn := &models.Connection{
		ID:        bson.NewObjectID(),
		UserRef:   userID,
		Context:   text,
		Tags:      tags,
		Likes:     []bson.ObjectID{},
		Favorites: []bson.ObjectID{},
	}

	if movieTitle != "" {
		poster, err := save(in.MoviePoster)
		if err != nil {
			return nil, err
		}
		mi := models.MovieInput{
			Title:    movieTitle,
			Genres:   models.SplitList(in.MovieGenres),
			Director: strings.TrimSpace(in.Director),
			Actors:   models.SplitList(in.Actors),
			Year:     movieYear,
			Synopsis: strings.TrimSpace(in.MovieSynopsis),
		}
		if poster != nil {
			mi.PosterPath, mi.PosterPublicID = poster.URL, poster.PublicID
		}
		movie, accepted, err := s.resolveMovie(ctx, mi)
		if err != nil {
			return nil, err
		}
		if poster != nil {
			stored = s.handOff(ctx, stored, poster.PublicID, accepted)
		}
		conn.MovieRef = &movie.ID
	}

	if bookTitle != "" {
		cover, err := save(in.BookCover)
		if err != nil {
			return nil, err
		}
		bi := models.BookInput{
			Title:           bookTitle,
			Genres:          models.SplitList(in.BookGenres),
			Author:          strings.TrimSpace(in.Author),
			ISBN:            strings.TrimSpace(in.ISBN),
			PublicationYear: pubYear,
			Synopsis:        strings.TrimSpace(in.BookSynopsis),
		}
		if cover != nil {
			bi.CoverPath, bi.CoverPublicID = cover.URL, cover.PublicID
		}
		book, accepted, err := s.resolveBook(ctx, bi)
		if err != nil {
			return nil, err
		}
		if cover != nil {
			stored = s.handOff(ctx, stored, cover.PublicID, accepted)
		}
		conn.BookRef = &book.ID
	}

	shot, err := save(in.Screenshot)
	if err != nil {
		return nil, err
	}
	if shot != nil {
		conn.ScreenshotURL, conn.ScreenshotPublicID = shot.URL, shot.PublicID
	}

	now := s.now()
	conn.CreatedAt, conn.UpdatedAt = now, now
	if err := s.store.InsertConnection(ctx, conn); err != nil {
		return nil, fmt.Errorf("insert connection: %w", err)
	}
	created = true

	logging.Ctx(ctx).Info().
		Str("connection_id", conn.ID.Hex()).
		Bool("movie", conn.MovieRef != nil).
		Bool("book", conn.BookRef != nil).
		Msg("Connection created")
	return s.connectionView(ctx, conn.ID)
}

// Feed returns one page of the filtered feed, newest first.
func (s *Service) Feed(ctx context.Context, filter models.FeedFilter, page int) (*models.FeedPage, error) {
	if page < 1 {
		page = 1
	}
	views, total, err := s.store.Feed(ctx, filter, page, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	if views == nil {
		views = []*models.ConnectionView{}
	}
	return &models.FeedPage{
		Connections: views,
		Page:        page,
		Pages:       models.PageCount(total, s.pageSize),
		Total:       total,
	}, nil
}

// Connection returns one populated connection.
func (s *Service) Connection(ctx context.Context, id bson.ObjectID) (*models.ConnectionView, error) {
	return s.connectionView(ctx, id)
}

// ConnectionsByUser lists a user's connections, newest first.
func (s *Service) ConnectionsByUser(ctx context.Context, userID bson.ObjectID) ([]*models.ConnectionView, error) {
	return s.listViews(ctx, database.ConnectionQuery{UserRef: &userID})
}

// Favorites lists the connections the user favorited.
func (s *Service) Favorites(ctx context.Context, userID bson.ObjectID) ([]*models.ConnectionView, error) {
	u, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Favorites) == 0 {
		return []*models.ConnectionView{}, nil
	}
	return s.listViews(ctx, database.ConnectionQuery{IDs: u.Favorites})
}

func (s *Service) listViews(ctx context.Context, q database.ConnectionQuery) ([]*models.ConnectionView, error) {
	views, err := s.store.ListConnectionViews(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	if views == nil {
		views = []*models.ConnectionView{}
	}
	return views, nil
}

// UpdateConnection edits context, tags, or the screenshot. Owner only.
func (s *Service) UpdateConnection(ctx context.Context, userID, id bson.ObjectID, edit ConnectionEdit) (*models.ConnectionView, error) {
	conn, err := s.getConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.Can(userID.Hex(), authz.ResourceConnection, authz.ActionUpdate, conn.UserRef.Hex()) {
		return nil, forbiddenError(MsgUpdateForbidden)
	}

	var update database.ConnectionUpdate
	if edit.Context != nil {
		text := strings.TrimSpace(*edit.Context)
		if text == "" && conn.MovieRef == nil && conn.BookRef == nil {
			return nil, validationError(MsgSubjectRequired)
		}
		update.Context = &text
	}
	if edit.Tags != nil {
		tags, err := s.parseTags(*edit.Tags)
		if err != nil {
			return nil, err
		}
		update.Tags = &tags
	}

	var shot *media.Asset
	if edit.Screenshot != nil {
		shot, err = s.media.Save(ctx, edit.Screenshot)
		if err != nil {
			return nil, fmt.Errorf("store screenshot: %w", err)
		}
		update.ScreenshotURL = &shot.URL
		update.ScreenshotPublicID = &shot.PublicID
	}

	if err := s.store.UpdateConnection(ctx, id, update, s.now()); err != nil {
		if shot != nil {
			s.discardAsset(ctx, shot.PublicID)
		}
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFoundError(MsgConnectionNotFound)
		}
		return nil, fmt.Errorf("update connection: %w", err)
	}
	if shot != nil {
		s.discardAsset(ctx, conn.ScreenshotPublicID)
	}
	return s.connectionView(ctx, id)
}

// DeleteConnection removes a connection and its dependent data. Allowed
// for the owner and admins.
func (s *Service) DeleteConnection(ctx context.Context, userID, id bson.ObjectID) error {
	conn, err := s.getConnection(ctx, id)
	if err != nil {
		return err
	}
	if !s.authz.Can(userID.Hex(), authz.ResourceConnection, authz.ActionDelete, conn.UserRef.Hex()) {
		return forbiddenError(MsgDeleteForbidden)
	}
	return s.removeConnection(ctx, conn)
}

// removeConnection runs each cleanup step as its own effect so one failure
// neither blocks the others nor the delete itself.
func (s *Service) removeConnection(ctx context.Context, conn *models.Connection) error {
	s.discardAsset(ctx, conn.ScreenshotPublicID)
	_ = s.effects.Run(ctx, EffectPullFavorites, connectionPayload{ConnectionID: conn.ID})
	_ = s.effects.Run(ctx, EffectDeleteComments, connectionPayload{ConnectionID: conn.ID})
	_ = s.effects.Run(ctx, EffectDeleteNotifications, connectionPayload{ConnectionID: conn.ID})

	if err := s.store.DeleteConnection(ctx, conn.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("delete connection: %w", err)
	}
	logging.Ctx(ctx).Info().Str("connection_id", conn.ID.Hex()).Msg("Connection deleted")
	return nil
}

// handOff removes a poster or cover from the pending cleanup list once the
// title merge has decided its fate. A rejected image is deleted right away;
// an accepted one now belongs to the title record.
func (s *Service) handOff(ctx context.Context, stored []string, publicID string, accepted bool) []string {
	out := stored[:0]
	for _, id := range stored {
		if id != publicID {
			out = append(out, id)
		}
	}
	if !accepted {
		s.discardAsset(ctx, publicID)
	}
	return out
}

func (s *Service) parseTags(raw string) ([]string, error) {
	tags := models.SplitList(raw)
	if s.maxTags > 0 && len(tags) > s.maxTags {
		return nil, validationError(fmt.Sprintf("At most %d tags are allowed", s.maxTags))
	}
	return tags, nil
}

func parseYear(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 0 || y > 9999 {
		return 0, validationError(field + " must be a valid year")
	}
	return y, nil
}
