// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/moviebooks/internal/logging"
	ws "github.com/tomtom215/moviebooks/internal/websocket"
)

// Notifications returns the caller's inbox.
//
// @Summary List notifications
// @Description Newest first with the sender populated, plus the unread count.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.NotificationList
// @Failure 401 {object} models.ErrorResponse
// @Router /notifications [get]
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.svc.Notifications(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// MarkNotificationRead marks one notification read.
//
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.NotificationView
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Missing or addressed to someone else"
// @Router /notifications/{id}/read [patch]
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	n, err := h.svc.MarkNotificationRead(r.Context(), userID, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

// MarkAllNotificationsRead marks every unread notification of the caller.
//
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ReadAllResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /notifications/read-all [patch]
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	res, err := h.svc.MarkAllNotificationsRead(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// NotificationStream upgrades to a websocket that receives the caller's
// new notifications as {type, data, timestamp} messages.
//
// @Summary Notification stream
// @Description Websocket upgrade. Browsers may pass the token as the token query parameter.
// @Tags Notifications
// @Security BearerAuth
// @Param token query string false "JWT when headers cannot be set"
// @Success 101 "Switching protocols"
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse "Realtime delivery unavailable"
// @Router /notifications/ws [get]
func (h *Handler) NotificationStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	err := ws.Accept(h.wsHub, h.upgrader, w, r, userID.Hex())
	switch {
	case err == nil:
	case errors.Is(err, ws.ErrHubUnavailable):
		h.respondStatus(w, r, http.StatusServiceUnavailable, "Realtime notifications are unavailable")
	default:
		// The upgrader has already answered the client.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
	}
}
