// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/moviebooks/internal/models"
)

// =============================================================================
// Comments
// =============================================================================

func (s *MongoStore) InsertComment(ctx context.Context, c *models.Comment) error {
	ensureID(&c.ID)
	return insertDoc(ctx, s, s.comments, c)
}

func (s *MongoStore) GetComment(ctx context.Context, id bson.ObjectID) (*models.Comment, error) {
	return findByID[models.Comment](ctx, s, s.comments, id)
}

// ListComments returns the comments of a connection, oldest first.
func (s *MongoStore) ListComments(ctx context.Context, connectionID bson.ObjectID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[models.Comment](ctx, s, s.comments, bson.M{"connection": connectionID}, opts)
}

func (s *MongoStore) UpdateCommentText(ctx context.Context, id bson.ObjectID, text string, now time.Time) (*models.Comment, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"text": text, "updatedAt": now}}

	start := time.Now()
	var c models.Comment
	err := s.comments.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c)
	if err = done("update", CollComments, start, err); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoStore) DeleteComment(ctx context.Context, id bson.ObjectID) error {
	n, err := deleteMany(ctx, s, s.comments, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteCommentsByConnection(ctx context.Context, connectionID bson.ObjectID) (int64, error) {
	return deleteMany(ctx, s, s.comments, bson.M{"connection": connectionID})
}

func (s *MongoStore) DeleteCommentsByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return deleteMany(ctx, s, s.comments, bson.M{"user": userID})
}

// =============================================================================
// Follows
// =============================================================================

// InsertFollow returns ErrDuplicate when the edge already exists.
func (s *MongoStore) InsertFollow(ctx context.Context, f *models.Follow) error {
	ensureID(&f.ID)
	return insertDoc(ctx, s, s.follows, f)
}

func (s *MongoStore) GetFollow(ctx context.Context, follower, followee bson.ObjectID) (*models.Follow, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	var f models.Follow
	err := s.follows.FindOne(ctx, bson.M{"follower": follower, "followee": followee}).Decode(&f)
	if err = done("find_one", CollFollows, start, err); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *MongoStore) DeleteFollow(ctx context.Context, follower, followee bson.ObjectID) error {
	n, err := deleteMany(ctx, s, s.follows, bson.M{"follower": follower, "followee": followee})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFollowers returns the IDs of users following userID, newest first.
func (s *MongoStore) ListFollowers(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error) {
	edges, err := s.listFollows(ctx, bson.M{"followee": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]bson.ObjectID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Follower)
	}
	return ids, nil
}

// ListFollowing returns the IDs of users userID follows, newest first.
func (s *MongoStore) ListFollowing(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error) {
	edges, err := s.listFollows(ctx, bson.M{"follower": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]bson.ObjectID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Followee)
	}
	return ids, nil
}

func (s *MongoStore) listFollows(ctx context.Context, filter bson.M) ([]*models.Follow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findMany[models.Follow](ctx, s, s.follows, filter, opts)
}

func (s *MongoStore) CountFollows(ctx context.Context, userID bson.ObjectID) (models.FollowCounts, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var counts models.FollowCounts

	start := time.Now()
	n, err := s.follows.CountDocuments(ctx, bson.M{"followee": userID})
	if err = done("count", CollFollows, start, err); err != nil {
		return counts, err
	}
	counts.Followers = n

	start = time.Now()
	n, err = s.follows.CountDocuments(ctx, bson.M{"follower": userID})
	if err = done("count", CollFollows, start, err); err != nil {
		return counts, err
	}
	counts.Following = n
	return counts, nil
}

// DeleteFollowsByUser removes every edge touching userID.
func (s *MongoStore) DeleteFollowsByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return deleteMany(ctx, s, s.follows, bson.M{"$or": bson.A{
		bson.M{"follower": userID},
		bson.M{"followee": userID},
	}})
}

// =============================================================================
// Notifications
// =============================================================================

// InsertNotification returns ErrDuplicate when the ID was already stored.
func (s *MongoStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	ensureID(&n.ID)
	return insertDoc(ctx, s, s.notifications, n)
}

func (s *MongoStore) ListNotifications(ctx context.Context, recipient bson.ObjectID, limit int) ([]*models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findMany[models.Notification](ctx, s, s.notifications, bson.M{"recipient": recipient}, opts)
}

func (s *MongoStore) CountUnread(ctx context.Context, recipient bson.ObjectID) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	n, err := s.notifications.CountDocuments(ctx, bson.M{"recipient": recipient, "read": false})
	if err = done("count", CollNotifications, start, err); err != nil {
		return 0, err
	}
	return n, nil
}

// MarkNotificationRead sets read on a notification owned by recipient.
// Notifications of other users are reported as ErrNotFound.
func (s *MongoStore) MarkNotificationRead(ctx context.Context, id, recipient bson.ObjectID) (*models.Notification, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	start := time.Now()
	var n models.Notification
	err := s.notifications.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "recipient": recipient},
		bson.M{"$set": bson.M{"read": true}},
		opts,
	).Decode(&n)
	if err = done("update", CollNotifications, start, err); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *MongoStore) MarkAllNotificationsRead(ctx context.Context, recipient bson.ObjectID) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.notifications.UpdateMany(ctx,
		bson.M{"recipient": recipient, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err = done("update_many", CollNotifications, start, err); err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) DeleteNotificationsByConnection(ctx context.Context, connectionID bson.ObjectID) (int64, error) {
	return deleteMany(ctx, s, s.notifications, bson.M{"connection": connectionID})
}

// DeleteNotificationsByUser removes notifications the user sent or received.
func (s *MongoStore) DeleteNotificationsByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return deleteMany(ctx, s, s.notifications, bson.M{"$or": bson.A{
		bson.M{"recipient": userID},
		bson.M{"sender": userID},
	}})
}

// =============================================================================
// Shared helpers
// =============================================================================

func findMany[T any](ctx context.Context, s *MongoStore, coll *mongo.Collection, filter any, opts *options.FindOptionsBuilder) ([]*T, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

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

func deleteMany(ctx context.Context, s *MongoStore, coll *mongo.Collection, filter any) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := coll.DeleteMany(ctx, filter)
	if err = done("delete", coll.Name(), start, err); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
