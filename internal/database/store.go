// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// Package database defines the document store contract used by the domain
// services and implements it on MongoDB.
//
// The in-memory implementation in the memdb subpackage satisfies the same
// interfaces and is used for development and tests.
package database

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/models"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

// PageOffset returns how many documents precede page. It saturates at
// math.MaxInt64 instead of overflowing, so absurd page numbers land past
// the end of the result set.
func PageOffset(page, pageSize int) int64 {
	if page < 1 || pageSize < 1 {
		return 0
	}
	n, size := int64(page-1), int64(pageSize)
	if n > math.MaxInt64/size {
		return math.MaxInt64
	}
	return n * size
}

// SetField names a user-id set on a Connection.
type SetField string

const (
	SetLikes     SetField = "likes"
	SetFavorites SetField = "favorites"
)

// ConnectionQuery selects populated connections, newest first.
// Zero-valued fields are ignored; IDs restricts to the given connection IDs.
type ConnectionQuery struct {
	UserRef  *bson.ObjectID
	MovieRef *bson.ObjectID
	BookRef  *bson.ObjectID
	IDs      []bson.ObjectID
	Limit    int
}

// ConnectionUpdate holds optional connection field changes. Nil means unchanged.
type ConnectionUpdate struct {
	Context            *string
	Tags               *[]string
	ScreenshotURL      *string
	ScreenshotPublicID *string
}

// ProfileUpdate holds optional user profile changes. Nil means unchanged.
type ProfileUpdate struct {
	DisplayName       *string
	Bio               *string
	Location          *string
	ProfilePictureURL *string
	ProfilePictureID  *string
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	GetUserSummaries(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.UserSummary, error)
	UpdateUserProfile(ctx context.Context, id bson.ObjectID, update ProfileUpdate, now time.Time) (*models.User, error)
	AddUserFavorite(ctx context.Context, userID, connectionID bson.ObjectID) error
	RemoveUserFavorite(ctx context.Context, userID, connectionID bson.ObjectID) error
	PullFavoriteFromAllUsers(ctx context.Context, connectionID bson.ObjectID) (int64, error)
	DeleteUser(ctx context.Context, id bson.ObjectID) error
}

// TitleStore persists movies and books. Lookups by title are case-insensitive.
//
// Updates are per field: UpdateMovieDetails sets the non-empty detail fields
// of the input, and ClaimMoviePoster sets the poster only while the record
// has none, reporting whether this call won it. Books mirror both.
type TitleStore interface {
	GetMovie(ctx context.Context, id bson.ObjectID) (*models.Movie, error)
	FindMovieByTitle(ctx context.Context, title string) (*models.Movie, error)
	InsertMovie(ctx context.Context, m *models.Movie) error
	UpdateMovieDetails(ctx context.Context, id bson.ObjectID, in models.MovieInput, now time.Time) error
	ClaimMoviePoster(ctx context.Context, id bson.ObjectID, path, publicID string, now time.Time) (bool, error)
	SearchMovies(ctx context.Context, prefix string, limit int) ([]*models.Movie, error)

	GetBook(ctx context.Context, id bson.ObjectID) (*models.Book, error)
	FindBookByTitle(ctx context.Context, title string) (*models.Book, error)
	InsertBook(ctx context.Context, b *models.Book) error
	UpdateBookDetails(ctx context.Context, id bson.ObjectID, in models.BookInput, now time.Time) error
	ClaimBookCover(ctx context.Context, id bson.ObjectID, path, publicID string, now time.Time) (bool, error)
	SearchBooks(ctx context.Context, prefix string, limit int) ([]*models.Book, error)
}

// ConnectionStore persists connections and builds their populated views.
type ConnectionStore interface {
	InsertConnection(ctx context.Context, c *models.Connection) error
	GetConnection(ctx context.Context, id bson.ObjectID) (*models.Connection, error)
	GetConnectionView(ctx context.Context, id bson.ObjectID) (*models.ConnectionView, error)
	ListConnectionViews(ctx context.Context, q ConnectionQuery) ([]*models.ConnectionView, error)
	ListConnectionsByUser(ctx context.Context, userID bson.ObjectID) ([]*models.Connection, error)
	CountConnectionsByUser(ctx context.Context, userID bson.ObjectID) (int64, error)
	Feed(ctx context.Context, filter models.FeedFilter, page, pageSize int) ([]*models.ConnectionView, int64, error)
	AddToSet(ctx context.Context, id bson.ObjectID, field SetField, userID bson.ObjectID) error
	PullFromSet(ctx context.Context, id bson.ObjectID, field SetField, userID bson.ObjectID) error
	PullUserFromAllSets(ctx context.Context, userID bson.ObjectID) error
	UpdateConnection(ctx context.Context, id bson.ObjectID, update ConnectionUpdate, now time.Time) error
	DeleteConnection(ctx context.Context, id bson.ObjectID) error
}

// CommentStore persists comments.
type CommentStore interface {
	InsertComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id bson.ObjectID) (*models.Comment, error)
	ListComments(ctx context.Context, connectionID bson.ObjectID) ([]*models.Comment, error)
	UpdateCommentText(ctx context.Context, id bson.ObjectID, text string, now time.Time) (*models.Comment, error)
	DeleteComment(ctx context.Context, id bson.ObjectID) error
	DeleteCommentsByConnection(ctx context.Context, connectionID bson.ObjectID) (int64, error)
	DeleteCommentsByUser(ctx context.Context, userID bson.ObjectID) (int64, error)
}

// FollowStore persists the follow graph.
type FollowStore interface {
	InsertFollow(ctx context.Context, f *models.Follow) error
	GetFollow(ctx context.Context, follower, followee bson.ObjectID) (*models.Follow, error)
	DeleteFollow(ctx context.Context, follower, followee bson.ObjectID) error
	ListFollowers(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error)
	ListFollowing(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error)
	CountFollows(ctx context.Context, userID bson.ObjectID) (models.FollowCounts, error)
	DeleteFollowsByUser(ctx context.Context, userID bson.ObjectID) (int64, error)
}

// NotificationStore persists notifications. Inserting an existing ID
// returns ErrDuplicate so replayed side effects are detectable.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipient bson.ObjectID, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, recipient bson.ObjectID) (int64, error)
	MarkNotificationRead(ctx context.Context, id, recipient bson.ObjectID) (*models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, recipient bson.ObjectID) (int64, error)
	DeleteNotificationsByConnection(ctx context.Context, connectionID bson.ObjectID) (int64, error)
	DeleteNotificationsByUser(ctx context.Context, userID bson.ObjectID) (int64, error)
}

// Store is the full document store.
type Store interface {
	UserStore
	TitleStore
	ConnectionStore
	CommentStore
	FollowStore
	NotificationStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
