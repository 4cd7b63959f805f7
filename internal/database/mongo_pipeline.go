// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package database

import (
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tomtom215/moviebooks/internal/models"
)

// lookupStages joins movies, books, and users onto each connection. Each
// join is unwound with preserveNullAndEmptyArrays so connections without a
// movie or book are kept with the reference absent.
func lookupStages() mongo.Pipeline {
	join := func(from, field string) []bson.D {
		return []bson.D{
			{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: from},
				{Key: "localField", Value: field},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: field},
			}}},
			{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + field},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		}
	}

	var stages mongo.Pipeline
	stages = append(stages, join(CollMovies, "movieRef")...)
	stages = append(stages, join(CollBooks, "bookRef")...)
	stages = append(stages, join(CollUsers, "userRef")...)
	return stages
}

// projectStage flattens the joined document into the ConnectionView shape.
// Only public user fields are kept.
func projectStage() bson.D {
	return bson.D{{Key: "$project", Value: bson.D{
		{Key: "_id", Value: 1},
		{Key: "context", Value: 1},
		{Key: "tags", Value: 1},
		{Key: "screenshotUrl", Value: 1},
		{Key: "screenshotPublicId", Value: 1},
		{Key: "likes", Value: 1},
		{Key: "favorites", Value: 1},
		{Key: "createdAt", Value: 1},
		{Key: "updatedAt", Value: 1},
		{Key: "movieRef", Value: 1},
		{Key: "bookRef", Value: 1},
		{Key: "userRef._id", Value: 1},
		{Key: "userRef.username", Value: 1},
		{Key: "userRef.displayName", Value: 1},
		{Key: "userRef.profilePictureUrl", Value: 1},
	}}}
}

func newestFirst() bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}}
}

// exactFold matches v exactly, ignoring case. v is quoted so user input is
// never interpreted as a pattern.
func exactFold(v string) bson.Regex {
	return bson.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}

// prefixFold matches values starting with v.
func prefixFold(v string) bson.Regex {
	return bson.Regex{Pattern: "^" + regexp.QuoteMeta(v), Options: "i"}
}

// feedMatch splits the filter into conditions on the connection itself and
// conditions on the joined movie and book documents.
func feedMatch(f models.FeedFilter) (base, joined bson.D) {
	if len(f.Tags) > 0 {
		base = append(base, bson.E{Key: "tags", Value: bson.D{{Key: "$in", Value: f.Tags}}})
	}

	fields := []struct {
		path  string
		value string
	}{
		{"movieRef.genres", f.MovieGenre},
		{"movieRef.director", f.Director},
		{"movieRef.actors", f.Actor},
		{"bookRef.genres", f.BookGenre},
		{"bookRef.author", f.Author},
	}
	for _, fld := range fields {
		if fld.value != "" {
			joined = append(joined, bson.E{Key: fld.path, Value: exactFold(fld.value)})
		}
	}
	return base, joined
}

// feedBase is the pipeline shared by the count and page passes.
func feedBase(f models.FeedFilter) mongo.Pipeline {
	base, joined := feedMatch(f)

	var p mongo.Pipeline
	if len(base) > 0 {
		p = append(p, bson.D{{Key: "$match", Value: base}})
	}
	p = append(p, lookupStages()...)
	if len(joined) > 0 {
		p = append(p, bson.D{{Key: "$match", Value: joined}})
	}
	return p
}

// FeedPipelines returns the count and page pipelines for one feed request.
// Both start from the same base so the total always describes the filtered set.
func FeedPipelines(f models.FeedFilter, page, pageSize int) (count, pageP mongo.Pipeline) {
	if page < 1 {
		page = 1
	}

	count = append(feedBase(f), bson.D{{Key: "$count", Value: "total"}})

	pageP = append(feedBase(f),
		newestFirst(),
		bson.D{{Key: "$skip", Value: PageOffset(page, pageSize)}},
		bson.D{{Key: "$limit", Value: int64(pageSize)}},
		projectStage(),
	)
	return count, pageP
}

// ViewPipeline selects connections by reference and populates them.
func ViewPipeline(q ConnectionQuery) mongo.Pipeline {
	match := bson.D{}
	if q.UserRef != nil {
		match = append(match, bson.E{Key: "userRef", Value: *q.UserRef})
	}
	if q.MovieRef != nil {
		match = append(match, bson.E{Key: "movieRef", Value: *q.MovieRef})
	}
	if q.BookRef != nil {
		match = append(match, bson.E{Key: "bookRef", Value: *q.BookRef})
	}
	if q.IDs != nil {
		match = append(match, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: q.IDs}}})
	}

	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		newestFirst(),
	}
	if q.Limit > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: int64(q.Limit)}})
	}
	p = append(p, lookupStages()...)
	return append(p, projectStage())
}
