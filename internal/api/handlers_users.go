// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"net/http"

	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/social"
)

// GetUser returns a public profile. A signed-in caller also gets their
// follow status toward the user.
//
// @Summary Get user profile
// @Description Public profile with follower, following, and connection counts. With a valid token the response includes viewer.isFollowing and viewer.isSelf.
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	p, err := h.svc.Profile(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if viewer, ok := auth.UserIDFromContext(r.Context()); ok {
		status, err := h.svc.FollowStatus(r.Context(), viewer, id)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		p.Viewer = status
	}
	respondJSON(w, http.StatusOK, p)
}

// UpdateMe edits the caller's profile.
//
// @Summary Update own profile
// @Description Accepts JSON or multipart. Multipart requests may carry a profilePicture image.
// @Tags Users
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body social.ProfileInput false "Profile fields"
// @Param profilePicture formData file false "Profile picture"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [put]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var in social.ProfileInput
	var picture *media.Upload
	if isMultipart(r) {
		form, err := h.parseMultipart(w, r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		defer form.Close()

		in.DisplayName = form.value("displayName")
		in.Bio = form.value("bio")
		in.Location = form.value("location")
		if picture, err = form.upload("profilePicture"); err != nil {
			h.respondError(w, r, err)
			return
		}
	} else if err := decodeJSON(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), userID, in, picture)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// DeleteMe deletes the caller's account and everything attached to it.
//
// @Summary Delete own account
// @Description Removes the user's connections, comments, follow edges, notifications, likes, and favorites, then the account.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [delete]
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), userID); err != nil {
		h.respondError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: auth.TokenCookie, Value: "", Path: "/", MaxAge: -1})
	respondJSON(w, http.StatusOK, &models.MessageResponse{Message: social.MsgAccountDeleted})
}

// MyFavorites lists the connections the caller favorited.
//
// @Summary Own favorites
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ConnectionView
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me/favorites [get]
func (h *Handler) MyFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.svc.Favorites(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
