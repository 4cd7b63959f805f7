// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package social

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Kind classifies a domain error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// StatusCode maps the kind onto an HTTP status. Conflicts are reported as
// 400 to match the existing client contract.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func validationError(msg string) *Error   { return newError(KindValidation, msg) }
func unauthorizedError(msg string) *Error { return newError(KindUnauthorized, msg) }
func forbiddenError(msg string) *Error    { return newError(KindForbidden, msg) }
func notFoundError(msg string) *Error     { return newError(KindNotFound, msg) }
func conflictError(msg string) *Error     { return newError(KindConflict, msg) }

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Client-facing messages.
const (
	MsgInvalidID            = "Invalid ID"
	MsgTitlesRequired       = "Movie title and book title are required"
	MsgSubjectRequired      = "A movie title, book title, or context is required"
	MsgConnectionNotFound   = "Connection not found"
	MsgCommentNotFound      = "Comment not found"
	MsgUserNotFound         = "User not found"
	MsgMovieNotFound        = "Movie not found"
	MsgBookNotFound         = "Book not found"
	MsgNotificationNotFound = "Notification not found"
	MsgCommentText          = "Comment text must be between 1 and 1000 characters"
	MsgCannotFollowSelf     = "You cannot follow yourself"
	MsgAlreadyFollowing     = "Already following this user"
	MsgNotFollowing         = "Not following this user"
	MsgUserExists           = "User already exists"
	MsgInvalidCredentials   = "Invalid email or password"
	MsgNotAuthorized        = "Not authorized"
	MsgDeleteForbidden      = "Not authorized to delete this connection"
	MsgUpdateForbidden      = "Not authorized to update this connection"
	MsgCommentForbidden     = "Not authorized to modify this comment"
	MsgCommentRemoved       = "Comment removed"
	MsgConnectionRemoved    = "Connection removed"
	MsgUnfollowed           = "Unfollowed user"
	MsgAllRead              = "All notifications marked as read"
	MsgAccountDeleted       = "Account deleted"
)

// ParseID parses a hex ObjectID from a path parameter.
func ParseID(s string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return bson.ObjectID{}, validationError(MsgInvalidID)
	}
	return id, nil
}
