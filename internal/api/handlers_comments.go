// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"net/http"

	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/social"
)

// commentRequest is the body of comment create and edit requests.
type commentRequest struct {
	Text string `json:"text"`
}

// ListComments returns a connection's comments, oldest first.
//
// @Summary List comments
// @Tags Comments
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {array} models.CommentView
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id}/comments [get]
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	list, err := h.svc.Comments(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// AddComment comments on a connection.
//
// @Summary Add comment
// @Description Text is trimmed and must be 1 to 1000 characters.
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Connection ID"
// @Param request body commentRequest true "Comment"
// @Success 201 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id}/comments [post]
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	c, err := h.svc.AddComment(r.Context(), userID, id, req.Text)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// UpdateComment edits a comment. Author only.
//
// @Summary Edit comment
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body commentRequest true "New text"
// @Success 200 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse "Missing token or not the author"
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	c, err := h.svc.UpdateComment(r.Context(), userID, id, req.Text)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteComment removes a comment. Author or admin.
//
// @Summary Delete comment
// @Tags Comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 401 {object} models.ErrorResponse "Missing token or not the author"
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.svc.DeleteComment(r.Context(), userID, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &models.MessageResponse{Message: social.MsgCommentRemoved})
}
