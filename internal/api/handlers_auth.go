// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/social"
)

// setTokenCookie mirrors the token into an HttpOnly cookie so browser
// clients can authenticate without storing it in script-visible storage.
func (h *Handler) setTokenCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.config.Security.TokenTimeout),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register creates a new account.
//
// @Summary Register a new user
// @Description Creates an account and returns it with a signed JWT. Usernames are 3-20 letters, digits, or underscores.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body social.RegisterInput true "Account details"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse "Validation failed or user already exists"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in social.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	res, err := h.svc.Register(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.setTokenCookie(w, r, res.Token)
	respondJSON(w, http.StatusCreated, res)
}

// Login authenticates with email and password.
//
// @Summary Log in
// @Description Exchanges email and password for a signed JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body social.LoginInput true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in social.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.setTokenCookie(w, r, res.Token)
	respondJSON(w, http.StatusOK, res)
}

// Me returns the caller's profile.
//
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		// A valid token for a deleted account.
		if social.KindOf(err) == social.KindNotFound {
			h.respondStatus(w, r, http.StatusUnauthorized, social.MsgNotAuthorized)
			return
		}
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
