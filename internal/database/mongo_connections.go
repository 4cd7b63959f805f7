// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/moviebooks/internal/models"
)

func (s *MongoStore) InsertConnection(ctx context.Context, c *models.Connection) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ensureID(&c.ID)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Likes == nil {
		c.Likes = []bson.ObjectID{}
	}
	if c.Favorites == nil {
		c.Favorites = []bson.ObjectID{}
	}

	start := time.Now()
	_, err := s.connections.InsertOne(ctx, c)
	return done("insert", CollConnections, start, err)
}

func (s *MongoStore) GetConnection(ctx context.Context, id bson.ObjectID) (*models.Connection, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	var c models.Connection
	err := s.connections.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err = done("find_one", CollConnections, start, err); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoStore) GetConnectionView(ctx context.Context, id bson.ObjectID) (*models.ConnectionView, error) {
	views, err := s.ListConnectionViews(ctx, ConnectionQuery{IDs: []bson.ObjectID{id}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return views[0], nil
}

func (s *MongoStore) ListConnectionViews(ctx context.Context, q ConnectionQuery) ([]*models.ConnectionView, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	views, err := aggregateViews(ctx, s.connections, ViewPipeline(q))
	if err = done("aggregate", CollConnections, start, err); err != nil {
		return nil, err
	}
	return views, nil
}

// Feed runs the count and page passes of the feed pipeline.
func (s *MongoStore) Feed(ctx context.Context, filter models.FeedFilter, page, pageSize int) ([]*models.ConnectionView, int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	countP, pageP := FeedPipelines(filter, page, pageSize)

	start := time.Now()
	total, err := aggregateCount(ctx, s.connections, countP)
	if err = done("feed_count", CollConnections, start, err); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.ConnectionView{}, 0, nil
	}

	start = time.Now()
	views, err := aggregateViews(ctx, s.connections, pageP)
	if err = done("feed_page", CollConnections, start, err); err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func aggregateViews(ctx context.Context, coll *mongo.Collection, p mongo.Pipeline) ([]*models.ConnectionView, error) {
	cur, err := coll.Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	views := []*models.ConnectionView{}
	if err := cur.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode connections: %w", err)
	}
	for _, v := range views {
		if v.Tags == nil {
			v.Tags = []string{}
		}
		if v.Likes == nil {
			v.Likes = []bson.ObjectID{}
		}
		if v.Favorites == nil {
			v.Favorites = []bson.ObjectID{}
		}
	}
	return views, nil
}

func aggregateCount(ctx context.Context, coll *mongo.Collection, p mongo.Pipeline) (int64, error) {
	cur, err := coll.Aggregate(ctx, p)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		return 0, cur.Err()
	}
	var res struct {
		Total int64 `bson:"total"`
	}
	if err := cur.Decode(&res); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return res.Total, nil
}

func (s *MongoStore) ListConnectionsByUser(ctx context.Context, userID bson.ObjectID) ([]*models.Connection, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	start := time.Now()
	cur, err := s.connections.Find(ctx, bson.M{"userRef": userID}, opts)
	if err = done("find", CollConnections, start, err); err != nil {
		return nil, err
	}
	out := []*models.Connection{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *MongoStore) CountConnectionsByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	n, err := s.connections.CountDocuments(ctx, bson.M{"userRef": userID})
	if err = done("count", CollConnections, start, err); err != nil {
		return 0, err
	}
	return n, nil
}

// AddToSet adds userID to the named set with $addToSet.
func (s *MongoStore) AddToSet(ctx context.Context, id bson.ObjectID, field SetField, userID bson.ObjectID) error {
	return s.updateSet(ctx, id, bson.M{"$addToSet": bson.M{string(field): userID}})
}

// PullFromSet removes userID from the named set with $pull.
func (s *MongoStore) PullFromSet(ctx context.Context, id bson.ObjectID, field SetField, userID bson.ObjectID) error {
	return s.updateSet(ctx, id, bson.M{"$pull": bson.M{string(field): userID}})
}

func (s *MongoStore) updateSet(ctx context.Context, id bson.ObjectID, update bson.M) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.connections.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err = done("update", CollConnections, start, err); err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullUserFromAllSets removes userID from likes and favorites of every connection.
func (s *MongoStore) PullUserFromAllSets(ctx context.Context, userID bson.ObjectID) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{string(SetLikes): userID},
		bson.M{string(SetFavorites): userID},
	}}
	update := bson.M{"$pull": bson.M{
		string(SetLikes):     userID,
		string(SetFavorites): userID,
	}}

	start := time.Now()
	_, err := s.connections.UpdateMany(ctx, filter, update)
	return done("update_many", CollConnections, start, err)
}

func (s *MongoStore) UpdateConnection(ctx context.Context, id bson.ObjectID, update ConnectionUpdate, now time.Time) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	set := bson.M{"updatedAt": now}
	if update.Context != nil {
		set["context"] = *update.Context
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}
	if update.ScreenshotURL != nil {
		set["screenshotUrl"] = *update.ScreenshotURL
	}
	if update.ScreenshotPublicID != nil {
		set["screenshotPublicId"] = *update.ScreenshotPublicID
	}

	start := time.Now()
	res, err := s.connections.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err = done("update", CollConnections, start, err); err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteConnection(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.connections.DeleteOne(ctx, bson.M{"_id": id})
	if err = done("delete", CollConnections, start, err); err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
