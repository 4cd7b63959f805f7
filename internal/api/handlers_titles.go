// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"net/http"
)

// SearchMovies finds movies by title prefix.
//
// @Summary Search movies
// @Tags Titles
// @Produce json
// @Param search query string false "Title prefix, case-insensitive"
// @Success 200 {array} models.Movie
// @Router /movies [get]
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.SearchMovies(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// GetMovie returns one movie.
//
// @Summary Get movie
// @Tags Titles
// @Produce json
// @Param id path string true "Movie ID"
// @Success 200 {object} models.Movie
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 404 {object} models.ErrorResponse
// @Router /movies/{id} [get]
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	m, err := h.svc.Movie(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// MovieConnections lists the connections that reference a movie.
//
// @Summary Connections of a movie
// @Tags Titles
// @Produce json
// @Param id path string true "Movie ID"
// @Success 200 {array} models.ConnectionView
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 404 {object} models.ErrorResponse
// @Router /movies/{id}/connections [get]
func (h *Handler) MovieConnections(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	list, err := h.svc.ConnectionsByMovie(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// SearchBooks finds books by title prefix.
//
// @Summary Search books
// @Tags Titles
// @Produce json
// @Param search query string false "Title prefix, case-insensitive"
// @Success 200 {array} models.Book
// @Router /books [get]
func (h *Handler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.SearchBooks(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// GetBook returns one book.
//
// @Summary Get book
// @Tags Titles
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} models.Book
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 404 {object} models.ErrorResponse
// @Router /books/{id} [get]
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	b, err := h.svc.Book(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

// BookConnections lists the connections that reference a book.
//
// @Summary Connections of a book
// @Tags Titles
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {array} models.ConnectionView
// @Failure 400 {object} models.ErrorResponse "Invalid ID"
// @Failure 404 {object} models.ErrorResponse
// @Router /books/{id}/connections [get]
func (h *Handler) BookConnections(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	list, err := h.svc.ConnectionsByBook(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
