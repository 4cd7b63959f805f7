// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is an account. PasswordHash is never serialized to JSON.
type User struct {
	ID                bson.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Username          string          `json:"username" bson:"username"`
	Email             string          `json:"email" bson:"email"`
	PasswordHash      string          `json:"-" bson:"passwordHash"`
	DisplayName       string          `json:"displayName" bson:"displayName"`
	Bio               string          `json:"bio" bson:"bio"`
	Location          string          `json:"location" bson:"location"`
	ProfilePictureURL string          `json:"profilePictureUrl" bson:"profilePictureUrl"`
	ProfilePictureID  string          `json:"-" bson:"profilePicturePublicId,omitempty"`
	Favorites         []bson.ObjectID `json:"favorites" bson:"favorites"`
	CreatedAt         time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// Summary returns the public fields embedded in populated documents.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:                u.ID,
		Username:          u.Username,
		DisplayName:       u.DisplayName,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// HasFavorite reports whether connectionID is in the user's favorites.
func (u *User) HasFavorite(connectionID bson.ObjectID) bool {
	for _, id := range u.Favorites {
		if id == connectionID {
			return true
		}
	}
	return false
}

// UserSummary is the public projection of a User used when populating references.
type UserSummary struct {
	ID                bson.ObjectID `json:"_id" bson:"_id"`
	Username          string        `json:"username" bson:"username"`
	DisplayName       string        `json:"displayName,omitempty" bson:"displayName,omitempty"`
	ProfilePictureURL string        `json:"profilePictureUrl,omitempty" bson:"profilePictureUrl,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID        bson.ObjectID `json:"_id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Token     string        `json:"token"`
	CreatedAt time.Time     `json:"createdAt"`
}

// UserProfile is the public profile view with follow counts.
type UserProfile struct {
	ID                bson.ObjectID `json:"_id"`
	Username          string        `json:"username"`
	DisplayName       string        `json:"displayName"`
	Bio               string        `json:"bio"`
	Location          string        `json:"location"`
	ProfilePictureURL string        `json:"profilePictureUrl"`
	Followers         int64         `json:"followers"`
	Following         int64         `json:"following"`
	Connections       int64         `json:"connections"`
	CreatedAt         time.Time     `json:"createdAt"`
	// Viewer is set when the request is authenticated.
	Viewer *FollowStatus `json:"viewer,omitempty"`
}
