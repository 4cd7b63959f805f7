// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/social"
)

// msgInternal is shown for every 500 outside development.
const msgInternal = "Server error"

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError maps err onto a status code and writes the error envelope.
// Messages of social errors are shown to the client; anything else is a
// 500 with a generic message.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := social.KindOf(err).StatusCode()
	message := msgInternal

	var se *social.Error
	switch {
	case errors.As(err, &se):
		message = se.Message
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
		message = "Request timed out"
	}

	log := logging.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Int("status", status).
			Msg("API error")
	} else {
		log.Debug().
			Str("path", sanitizeLogValue(r.URL.Path)).
			Int("status", status).
			Str("message", sanitizeLogValue(message)).
			Msg("Request rejected")
	}

	resp := &models.ErrorResponse{Message: message}
	if h.config.Server.IsDevelopment() {
		resp.Stack = stackOf(r.Context(), err)
	}
	respondJSON(w, status, resp)
}

// respondStatus writes an error envelope with an explicit status. It also
// serves as the auth middleware's ErrorWriter.
func (h *Handler) respondStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := &models.ErrorResponse{Message: message}
	if h.config.Server.IsDevelopment() {
		resp.Stack = stackOf(r.Context(), errors.New(message))
	}
	respondJSON(w, status, resp)
}

// stackOf renders the wrapped error chain with the request ID.
func stackOf(ctx context.Context, err error) string {
	stack := fmt.Sprintf("%+v", err)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		stack = "request_id=" + id + ": " + stack
	}
	return stack
}
