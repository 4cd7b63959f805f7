// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/social"
)

// Feed returns one page of the filtered connection feed.
//
// @Summary List connections
// @Description Newest first, 10 per page. tags matches any of the listed tags; the other filters match the joined movie or book field case-insensitively.
// @Tags Connections
// @Produce json
// @Param tags query string false "Comma-separated tags"
// @Param movieGenre query string false "Movie genre"
// @Param director query string false "Director"
// @Param actor query string false "Actor"
// @Param bookGenre query string false "Book genre"
// @Param author query string false "Author"
// @Param pageNumber query int false "1-based page number" default(1)
// @Success 200 {object} models.FeedPage
// @Router /connections [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.FeedFilter{
		Tags:       models.SplitList(q.Get("tags")),
		MovieGenre: q.Get("movieGenre"),
		Director:   q.Get("director"),
		Actor:      q.Get("actor"),
		BookGenre:  q.Get("bookGenre"),
		Author:     q.Get("author"),
	}
	page, err := h.svc.Feed(r.Context(), filter, getIntParam(r, "pageNumber", 1))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// CreateConnection posts a new movie and book connection.
//
// @Summary Create connection
// @Description Multipart form. Movie and book records are found or created by title and merged with the supplied details. Comma-separated list fields are split and trimmed.
// @Tags Connections
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param movieTitle formData string false "Movie title"
// @Param movieGenres formData string false "Comma-separated movie genres"
// @Param director formData string false "Director"
// @Param actors formData string false "Comma-separated actors"
// @Param movieYear formData int false "Release year"
// @Param movieSynopsis formData string false "Movie synopsis"
// @Param bookTitle formData string false "Book title"
// @Param bookGenres formData string false "Comma-separated book genres"
// @Param author formData string false "Author"
// @Param isbn formData string false "ISBN"
// @Param publicationYear formData int false "Publication year"
// @Param bookSynopsis formData string false "Book synopsis"
// @Param context formData string false "How the two are connected"
// @Param tags formData string false "Comma-separated tags"
// @Param moviePoster formData file false "Movie poster image"
// @Param bookCover formData file false "Book cover image"
// @Param screenshot formData file false "Screenshot image"
// @Success 201 {object} models.ConnectionView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /connections [post]
func (h *Handler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var in social.ConnectionInput
	if isMultipart(r) {
		form, err := h.parseMultipart(w, r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		defer form.Close()

		in = connectionInput(func(key string) string {
			if v := form.value(key); v != nil {
				return *v
			}
			return ""
		})
		for _, f := range []struct {
			field string
			dst   **media.Upload
		}{
			{"moviePoster", &in.MoviePoster},
			{"bookCover", &in.BookCover},
			{"screenshot", &in.Screenshot},
		} {
			if *f.dst, err = form.upload(f.field); err != nil {
				h.respondError(w, r, err)
				return
			}
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			h.respondError(w, r, badRequest(msgInvalidBody))
			return
		}
		in = connectionInput(r.PostForm.Get)
	}

	v, err := h.svc.CreateConnection(r.Context(), userID, in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, v)
}

// connectionInput reads the text fields of a connection form.
func connectionInput(get func(string) string) social.ConnectionInput {
	return social.ConnectionInput{
		MovieTitle:      get("movieTitle"),
		MovieGenres:     get("movieGenres"),
		Director:        get("director"),
		Actors:          get("actors"),
		MovieYear:       get("movieYear"),
		MovieSynopsis:   get("movieSynopsis"),
		BookTitle:       get("bookTitle"),
		BookGenres:      get("bookGenres"),
		Author:          get("author"),
		ISBN:            get("isbn"),
		PublicationYear: get("publicationYear"),
		BookSynopsis:    get("bookSynopsis"),
		Context:         get("context"),
		Tags:            get("tags"),
	}
}

// GetConnection returns one populated connection.
//
// @Summary Get connection
// @Tags Connections
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {object} models.ConnectionView
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id} [get]
func (h *Handler) GetConnection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	v, err := h.svc.Connection(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// UserConnections lists a user's connections.
//
// @Summary List a user's connections
// @Tags Connections
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} models.ConnectionView
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Router /connections/user/{userId} [get]
func (h *Handler) UserConnections(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	list, err := h.svc.ConnectionsByUser(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// connectionEditRequest is the JSON form of a connection edit.
type connectionEditRequest struct {
	Context *string `json:"context"`
	Tags    *string `json:"tags"`
}

// UpdateConnection edits the context, tags, or screenshot of a connection.
//
// @Summary Update connection
// @Description Owner only. Accepts JSON or multipart; multipart may carry a replacement screenshot.
// @Tags Connections
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Connection ID"
// @Param request body connectionEditRequest false "Edits"
// @Param screenshot formData file false "Replacement screenshot"
// @Success 200 {object} models.ConnectionView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id} [put]
func (h *Handler) UpdateConnection(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var edit social.ConnectionEdit
	if isMultipart(r) {
		form, err := h.parseMultipart(w, r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		defer form.Close()

		edit.Context = form.value("context")
		edit.Tags = form.value("tags")
		if edit.Screenshot, err = form.upload("screenshot"); err != nil {
			h.respondError(w, r, err)
			return
		}
	} else {
		var req connectionEditRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.respondError(w, r, err)
			return
		}
		edit.Context, edit.Tags = req.Context, req.Tags
	}

	v, err := h.svc.UpdateConnection(r.Context(), userID, id, edit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// DeleteConnection removes a connection and its comments, notifications,
// favorites, and screenshot.
//
// @Summary Delete connection
// @Description Owner or admin.
// @Tags Connections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Connection ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id} [delete]
func (h *Handler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.svc.DeleteConnection(r.Context(), userID, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &models.MessageResponse{Message: social.MsgConnectionRemoved})
}

// LikeConnection toggles the caller's like.
//
// @Summary Toggle like
// @Tags Connections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Connection ID"
// @Success 200 {object} models.ConnectionView
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id}/like [post]
func (h *Handler) LikeConnection(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.svc.ToggleLike)
}

// FavoriteConnection toggles the caller's favorite.
//
// @Summary Toggle favorite
// @Tags Connections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Connection ID"
// @Success 200 {object} models.ConnectionView
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id}/favorite [post]
func (h *Handler) FavoriteConnection(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.svc.ToggleFavorite)
}

type toggleFunc func(ctx context.Context, userID, id bson.ObjectID) (*models.ConnectionView, error)

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, fn toggleFunc) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	v, err := fn(r.Context(), userID, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}
