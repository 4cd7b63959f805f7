// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/moviebooks/internal/models"
)

// findByID, findByTitle, and friends are shared by movies and books, which
// differ only in collection and document type.

func findByID[T any](ctx context.Context, s *MongoStore, coll *mongo.Collection, id bson.ObjectID) (*T, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	var doc T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err = done("find_one", coll.Name(), start, err); err != nil {
		return nil, err
	}
	return &doc, nil
}

// findByTitle looks up by titleKey, falling back to a case-insensitive
// title match for documents written before titleKey existed.
func findByTitle[T any](ctx context.Context, s *MongoStore, coll *mongo.Collection, title string) (*T, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	var doc T
	err := coll.FindOne(ctx, bson.M{"titleKey": models.TitleKey(title)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		filter := bson.M{
			"titleKey": bson.M{"$exists": false},
			"title":    exactFold(title),
		}
		err = coll.FindOne(ctx, filter).Decode(&doc)
	}
	if err = done("find_one", coll.Name(), start, err); err != nil {
		return nil, err
	}
	return &doc, nil
}

func insertDoc(ctx context.Context, s *MongoStore, coll *mongo.Collection, doc any) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := coll.InsertOne(ctx, doc)
	return done("insert", coll.Name(), start, err)
}

// setFields applies a $set to one document. titleKey is always written so
// records created before it existed gain one.
func setFields(ctx context.Context, s *MongoStore, coll *mongo.Collection, id bson.ObjectID, set bson.D) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.D{{Key: "$set", Value: set}})
	if err = done("update", coll.Name(), start, err); err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// claimImage sets an image field only while it is empty or missing, so of
// two concurrent claims exactly one matches.
func claimImage(ctx context.Context, s *MongoStore, coll *mongo.Collection, id bson.ObjectID, pathField, idField, path, publicID string, now time.Time) (bool, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{pathField: ""},
			bson.M{pathField: bson.M{"$exists": false}},
		},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: pathField, Value: path},
		{Key: idField, Value: publicID},
		{Key: "updatedAt", Value: now},
	}}}

	start := time.Now()
	res, err := coll.UpdateOne(ctx, filter, update)
	if err = done("update", coll.Name(), start, err); err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func appendText(set bson.D, key, v string) bson.D {
	if v == "" {
		return set
	}
	return append(set, bson.E{Key: key, Value: v})
}

func appendList(set bson.D, key string, v []string) bson.D {
	if len(v) == 0 {
		return set
	}
	return append(set, bson.E{Key: key, Value: v})
}

func appendInt(set bson.D, key string, v int) bson.D {
	if v == 0 {
		return set
	}
	return append(set, bson.E{Key: key, Value: v})
}

func searchTitles[T any](ctx context.Context, s *MongoStore, coll *mongo.Collection, prefix string, limit int) ([]*T, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	filter := bson.M{}
	if key := models.TitleKey(prefix); key != "" {
		filter["titleKey"] = prefixFold(key)
	}
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	start := time.Now()
	cur, err := coll.Find(ctx, filter, opts)
	if err = done("find", coll.Name(), start, err); err != nil {
		return nil, err
	}
	out := []*T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *MongoStore) GetMovie(ctx context.Context, id bson.ObjectID) (*models.Movie, error) {
	return findByID[models.Movie](ctx, s, s.movies, id)
}

func (s *MongoStore) FindMovieByTitle(ctx context.Context, title string) (*models.Movie, error) {
	return findByTitle[models.Movie](ctx, s, s.movies, title)
}

// InsertMovie returns ErrDuplicate when another writer created the same title first.
func (s *MongoStore) InsertMovie(ctx context.Context, m *models.Movie) error {
	ensureID(&m.ID)
	return insertDoc(ctx, s, s.movies, m)
}

func (s *MongoStore) UpdateMovieDetails(ctx context.Context, id bson.ObjectID, in models.MovieInput, now time.Time) error {
	set := bson.D{
		{Key: "titleKey", Value: models.TitleKey(in.Title)},
		{Key: "updatedAt", Value: now},
	}
	set = appendList(set, "genres", in.Genres)
	set = appendText(set, "director", in.Director)
	set = appendList(set, "actors", in.Actors)
	set = appendInt(set, "year", in.Year)
	set = appendText(set, "synopsis", in.Synopsis)
	return setFields(ctx, s, s.movies, id, set)
}

func (s *MongoStore) ClaimMoviePoster(ctx context.Context, id bson.ObjectID, path, publicID string, now time.Time) (bool, error) {
	return claimImage(ctx, s, s.movies, id, "posterPath", "posterPublicId", path, publicID, now)
}

func (s *MongoStore) SearchMovies(ctx context.Context, prefix string, limit int) ([]*models.Movie, error) {
	return searchTitles[models.Movie](ctx, s, s.movies, prefix, limit)
}

func (s *MongoStore) GetBook(ctx context.Context, id bson.ObjectID) (*models.Book, error) {
	return findByID[models.Book](ctx, s, s.books, id)
}

func (s *MongoStore) FindBookByTitle(ctx context.Context, title string) (*models.Book, error) {
	return findByTitle[models.Book](ctx, s, s.books, title)
}

// InsertBook returns ErrDuplicate when another writer created the same title first.
func (s *MongoStore) InsertBook(ctx context.Context, b *models.Book) error {
	ensureID(&b.ID)
	return insertDoc(ctx, s, s.books, b)
}

func (s *MongoStore) UpdateBookDetails(ctx context.Context, id bson.ObjectID, in models.BookInput, now time.Time) error {
	set := bson.D{
		{Key: "titleKey", Value: models.TitleKey(in.Title)},
		{Key: "updatedAt", Value: now},
	}
	set = appendList(set, "genres", in.Genres)
	set = appendText(set, "author", in.Author)
	set = appendText(set, "isbn", in.ISBN)
	set = appendInt(set, "publicationYear", in.PublicationYear)
	set = appendText(set, "synopsis", in.Synopsis)
	return setFields(ctx, s, s.books, id, set)
}

func (s *MongoStore) ClaimBookCover(ctx context.Context, id bson.ObjectID, path, publicID string, now time.Time) (bool, error) {
	return claimImage(ctx, s, s.books, id, "coverPath", "coverPublicId", path, publicID, now)
}

func (s *MongoStore) SearchBooks(ctx context.Context, prefix string, limit int) ([]*models.Book, error) {
	return searchTitles[models.Book](ctx, s, s.books, prefix, limit)
}
