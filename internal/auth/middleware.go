// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/logging"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// TokenCookie is the cookie name read when no Authorization header is sent.
const TokenCookie = "token"

const (
	MsgNoToken     = "Not authorized, no token"
	MsgTokenFailed = "Not authorized, token failed"
)

// ErrorWriter writes an error response. The api package supplies one that
// renders the standard envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, message string)

// Middleware authenticates requests with JWTs.
type Middleware struct {
	jwt     *JWTManager
	onError ErrorWriter
}

// NewMiddleware returns auth middleware. A nil onError writes {"message": ...}.
func NewMiddleware(jwt *JWTManager, onError ErrorWriter) *Middleware {
	if onError == nil {
		onError = writeError
	}
	return &Middleware{jwt: jwt, onError: onError}
}

// Authenticate rejects requests without a valid token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return m.authenticate(next, false)
}

// AuthenticateWebSocket also accepts the token in the "token" query
// parameter, since browsers cannot set headers on websocket handshakes.
func (m *Middleware) AuthenticateWebSocket(next http.Handler) http.Handler {
	return m.authenticate(next, true)
}

func (m *Middleware) authenticate(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r, allowQuery)
		if token == "" {
			m.onError(w, r, http.StatusUnauthorized, MsgNoToken)
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			m.onError(w, r, http.StatusUnauthorized, MsgTokenFailed)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// Optional attaches claims when a valid token is present and otherwise
// passes the request through anonymously.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := ExtractToken(r, false); token != "" {
			if claims, err := m.jwt.ValidateToken(token); err == nil {
				r = r.WithContext(ContextWithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractToken reads the bearer header, then the token cookie, then
// (when allowQuery) the token query parameter.
func ExtractToken(r *http.Request, allowQuery bool) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}

// ContextWithClaims stores claims and tags the logging context with the user ID.
func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, claimsContextKey, c)
	return logging.ContextWithUserID(ctx, c.UserID())
}

// ClaimsFromContext returns the authenticated user's claims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok && c != nil
}

// UserIDFromContext returns the authenticated user's ObjectID.
func UserIDFromContext(ctx context.Context) (bson.ObjectID, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return bson.ObjectID{}, false
	}
	id, err := bson.ObjectIDFromHex(c.UserID())
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, _ *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
