// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Follow is a directed edge from Follower to Followee.
type Follow struct {
	ID        bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Follower  bson.ObjectID `json:"follower" bson:"follower"`
	Followee  bson.ObjectID `json:"followee" bson:"followee"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
}

// FollowStatus answers is-following queries.
type FollowStatus struct {
	IsFollowing bool `json:"isFollowing"`
	IsSelf      bool `json:"isSelf"`
}

// FollowCounts holds a user's follower and following totals.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
