// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// NotificationType identifies what triggered a notification.
type NotificationType string

// Notification types. Stored documents may carry legacy uppercase values.
const (
	NotificationLike        NotificationType = "like"
	NotificationComment     NotificationType = "comment"
	NotificationNewFollower NotificationType = "new_follower"
	NotificationFavorite    NotificationType = "favorite"
)

// Normalize maps legacy uppercase values onto the lowercase set.
func (t NotificationType) Normalize() NotificationType {
	return NotificationType(strings.ToLower(string(t)))
}

// Valid reports whether t, once normalized, is a known type.
func (t NotificationType) Valid() bool {
	switch t.Normalize() {
	case NotificationLike, NotificationComment, NotificationNewFollower, NotificationFavorite:
		return true
	}
	return false
}

// Notification is created only as a side effect. Read is the only mutable field.
type Notification struct {
	ID         bson.ObjectID    `json:"_id" bson:"_id,omitempty"`
	Recipient  bson.ObjectID    `json:"recipient" bson:"recipient"`
	Sender     bson.ObjectID    `json:"sender" bson:"sender"`
	Type       NotificationType `json:"type" bson:"type"`
	Message    string           `json:"message" bson:"message"`
	Link       string           `json:"link" bson:"link"`
	Connection *bson.ObjectID   `json:"connection,omitempty" bson:"connection,omitempty"`
	Read       bool             `json:"read" bson:"read"`
	CreatedAt  time.Time        `json:"createdAt" bson:"createdAt"`
}

// NotificationView is a Notification with the sender populated.
type NotificationView struct {
	ID         bson.ObjectID    `json:"_id"`
	Recipient  bson.ObjectID    `json:"recipient"`
	Sender     *UserSummary     `json:"sender"`
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	Link       string           `json:"link"`
	Connection *bson.ObjectID   `json:"connection,omitempty"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// NewNotificationView normalizes the type and attaches the sender.
func NewNotificationView(n *Notification, sender *UserSummary) *NotificationView {
	return &NotificationView{
		ID:         n.ID,
		Recipient:  n.Recipient,
		Sender:     sender,
		Type:       n.Type.Normalize(),
		Message:    n.Message,
		Link:       n.Link,
		Connection: n.Connection,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt,
	}
}

// NotificationList is the response of the notification listing.
type NotificationList struct {
	Notifications []*NotificationView `json:"notifications"`
	Unread        int64               `json:"unread"`
}

// ConnectionLink returns the client route for a connection.
func ConnectionLink(id bson.ObjectID) string {
	return "/connections/" + id.Hex()
}

// ProfileLink returns the client route for a user profile.
func ProfileLink(id bson.ObjectID) string {
	return "/profile/" + id.Hex()
}
