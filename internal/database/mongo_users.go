// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/moviebooks/internal/models"
)

// CreateUser inserts u, assigning an ID if it has none. Emails are stored lowercased.
func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ensureID(&u.ID)
	u.Email = strings.ToLower(u.Email)
	if u.Favorites == nil {
		u.Favorites = []bson.ObjectID{}
	}

	start := time.Now()
	_, err := s.users.InsertOne(ctx, u)
	return done("insert", CollUsers, start, err)
}

func (s *MongoStore) GetUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err = done("find_one", CollUsers, start, err); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if err = done("find_one", CollUsers, start, err); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserExists reports whether the username or the email is taken.
func (s *MongoStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": strings.ToLower(email)},
	}}

	start := time.Now()
	n, err := s.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err = done("count", CollUsers, start, err); err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetUserSummaries loads the public fields of the given users. Missing
// users are absent from the result.
func (s *MongoStore) GetUserSummaries(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.UserSummary, error) {
	out := make(map[bson.ObjectID]*models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{
		"_id": 1, "username": 1, "displayName": 1, "profilePictureUrl": 1,
	})

	start := time.Now()
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err = done("find", CollUsers, start, err); err != nil {
		return nil, err
	}

	var summaries []*models.UserSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, mapErr(err)
	}
	for _, us := range summaries {
		out[us.ID] = us
	}
	return out, nil
}

func (s *MongoStore) UpdateUserProfile(ctx context.Context, id bson.ObjectID, update ProfileUpdate, now time.Time) (*models.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	set := bson.M{"updatedAt": now}
	setIf := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	setIf("displayName", update.DisplayName)
	setIf("bio", update.Bio)
	setIf("location", update.Location)
	setIf("profilePictureUrl", update.ProfilePictureURL)
	setIf("profilePicturePublicId", update.ProfilePictureID)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	start := time.Now()
	var u models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err = done("update", CollUsers, start, err); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) AddUserFavorite(ctx context.Context, userID, connectionID bson.ObjectID) error {
	return s.updateUserFavorites(ctx, userID, bson.M{"$addToSet": bson.M{"favorites": connectionID}})
}

func (s *MongoStore) RemoveUserFavorite(ctx context.Context, userID, connectionID bson.ObjectID) error {
	return s.updateUserFavorites(ctx, userID, bson.M{"$pull": bson.M{"favorites": connectionID}})
}

func (s *MongoStore) updateUserFavorites(ctx context.Context, userID bson.ObjectID, update bson.M) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err = done("update", CollUsers, start, err); err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullFavoriteFromAllUsers removes connectionID from every user's favorites.
func (s *MongoStore) PullFavoriteFromAllUsers(ctx context.Context, connectionID bson.ObjectID) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.users.UpdateMany(ctx,
		bson.M{"favorites": connectionID},
		bson.M{"$pull": bson.M{"favorites": connectionID}},
	)
	if err = done("update_many", CollUsers, start, err); err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err = done("delete", CollUsers, start, err); err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
