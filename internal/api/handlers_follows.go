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

// Follow follows a user.
//
// @Summary Follow user
// @Tags Follows
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User to follow"
// @Success 201 {object} models.Follow
// @Failure 400 {object} models.ErrorResponse "Self follow, already following, or invalid ID"
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /follows/{userId} [post]
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	target, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	f, err := h.svc.Follow(r.Context(), userID, target)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, f)
}

// Unfollow removes a follow edge.
//
// @Summary Unfollow user
// @Tags Follows
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User to unfollow"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Not following this user"
// @Router /follows/{userId} [delete]
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	target, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.svc.Unfollow(r.Context(), userID, target); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &models.MessageResponse{Message: social.MsgUnfollowed})
}

// Following lists the users a user follows.
//
// @Summary List following
// @Tags Follows
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} models.UserSummary
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Router /follows/following/{userId} [get]
func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	list, err := h.svc.Following(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Followers lists a user's followers.
//
// @Summary List followers
// @Tags Follows
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} models.UserSummary
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Router /follows/followers/{userId} [get]
func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	list, err := h.svc.Followers(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// IsFollowing reports whether the caller follows a user.
//
// @Summary Follow status
// @Tags Follows
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.FollowStatus
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 401 {object} models.ErrorResponse
// @Router /follows/is-following/{userId} [get]
func (h *Handler) IsFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	target, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	st, err := h.svc.FollowStatus(r.Context(), userID, target)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// FollowCounts returns follower and following counts.
//
// @Summary Follow counts
// @Tags Follows
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.FollowCounts
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Router /follows/{userId} [get]
func (h *Handler) FollowCounts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	c, err := h.svc.FollowCounts(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}
