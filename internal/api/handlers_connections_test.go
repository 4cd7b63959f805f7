// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"bytes"
	"net/http"
	"os"
	"testing"

	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/social"
)

func TestCreateConnection_Multipart(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	alice := a.register("alice")

	body := form(t, map[string]string{
		"movieTitle":      "Arrival",
		"movieYear":       "2016",
		"director":        "Denis Villeneuve",
		"actors":          "Amy Adams, Jeremy Renner,",
		"bookTitle":       "Story of Your Life",
		"author":          "Ted Chiang",
		"publicationYear": "1998",
		"context":         "Nonlinear time",
		"tags":            " sci-fi , language ",
	}, map[string][]byte{
		"screenshot":  pngBytes,
		"moviePoster": pngBytes,
	})
	rec := a.do(http.MethodPost, "/api/connections", alice.token, body)
	wantStatus(t, rec, http.StatusCreated)

	v := decode[models.ConnectionView](t, rec)
	if v.MovieRef == nil || v.MovieRef.Title != "Arrival" || v.MovieRef.Year != 2016 {
		t.Errorf("movieRef = %+v", v.MovieRef)
	}
	if len(v.MovieRef.Actors) != 2 || v.MovieRef.PosterPath == "" {
		t.Errorf("movie details = %+v", v.MovieRef)
	}
	if v.BookRef == nil || v.BookRef.Author != "Ted Chiang" {
		t.Errorf("bookRef = %+v", v.BookRef)
	}
	if v.UserRef == nil || v.UserRef.Username != "alice" {
		t.Errorf("userRef = %+v", v.UserRef)
	}
	if len(v.Tags) != 2 || v.Tags[0] != "sci-fi" || v.Tags[1] != "language" {
		t.Errorf("tags = %q", v.Tags)
	}

	// The screenshot is served from the uploads directory.
	rec = a.do(http.MethodGet, v.ScreenshotURL, "", nil)
	wantStatus(t, rec, http.StatusOK)
	if !bytes.Equal(rec.Body.Bytes(), pngBytes) {
		t.Error("served screenshot differs from upload")
	}
	wantStatus(t, a.do(http.MethodGet, "/uploads/", "", nil), http.StatusNotFound)
}

func TestCreateConnection_Rejections(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	alice := a.register("alice")

	tests := []struct {
		name    string
		token   string
		fields  map[string]string
		files   map[string][]byte
		status  int
		message string
	}{
		{
			name:    "no token",
			fields:  map[string]string{"movieTitle": "Dune", "bookTitle": "Dune"},
			status:  http.StatusUnauthorized,
			message: "Not authorized, no token",
		},
		{
			name:    "missing book title",
			token:   alice.token,
			fields:  map[string]string{"movieTitle": "Dune"},
			status:  http.StatusBadRequest,
			message: social.MsgTitlesRequired,
		},
		{
			name:    "not an image",
			token:   alice.token,
			fields:  map[string]string{"movieTitle": "Dune", "bookTitle": "Dune"},
			files:   map[string][]byte{"screenshot": []byte("plain text, not a picture")},
			status:  http.StatusBadRequest,
			message: "Only image files are allowed for screenshot",
		},
		{
			name:    "too large",
			token:   alice.token,
			fields:  map[string]string{"movieTitle": "Dune", "bookTitle": "Dune"},
			files:   map[string][]byte{"bookCover": append(append([]byte{}, pngBytes...), make([]byte, 2<<20)...)},
			status:  http.StatusBadRequest,
			message: msgTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/api/connections", tt.token, form(t, tt.fields, tt.files))
			wantError(t, rec, tt.status, tt.message)
		})
	}

	if n := a.store.Counts()[database.CollConnections]; n != 0 {
		t.Errorf("connections = %d, want 0", n)
	}
	entries, err := os.ReadDir(a.cfg.Media.UploadsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("stray uploads: %d", len(entries))
	}
}

func TestFeed(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t) // page size 2
	alice := a.register("alice")
	a.connect(alice, "Arrival", "Story of Your Life", map[string]string{"tags": "sci-fi", "director": "Denis Villeneuve"})
	a.connect(alice, "Dune", "Dune", map[string]string{"tags": "sci-fi,epic", "director": "Denis Villeneuve"})
	a.connect(alice, "Emma", "Emma", map[string]string{"tags": "romance", "author": "Jane Austen"})

	tests := []struct {
		name      string
		query     string
		wantLen   int
		wantTotal int64
		wantPages int
		wantPage  int
	}{
		{"first page", "", 2, 3, 2, 1},
		{"second page", "?pageNumber=2", 1, 3, 2, 2},
		{"invalid page", "?pageNumber=abc", 2, 3, 2, 1},
		{"tags any of", "?tags=epic,romance", 2, 2, 1, 1},
		{"director ignores case", "?director=denis%20villeneuve", 2, 2, 1, 1},
		{"author", "?author=JANE%20AUSTEN", 1, 1, 1, 1},
		{"no match", "?tags=horror", 0, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodGet, "/api/connections"+tt.query, "", nil)
			wantStatus(t, rec, http.StatusOK)
			page := decode[models.FeedPage](t, rec)
			if len(page.Connections) != tt.wantLen || page.Total != tt.wantTotal ||
				page.Pages != tt.wantPages || page.Page != tt.wantPage {
				t.Errorf("page = len %d total %d pages %d page %d",
					len(page.Connections), page.Total, page.Pages, page.Page)
			}
		})
	}

	rec := a.do(http.MethodGet, "/api/connections", "", nil)
	page := decode[models.FeedPage](t, rec)
	if page.Connections[0].MovieRef.Title != "Emma" {
		t.Errorf("feed not newest first: %s", page.Connections[0].MovieRef.Title)
	}
}

func TestConnectionLifecycle(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")
	conn := a.connect(alice, "Arrival", "Story of Your Life", nil)
	path := "/api/connections/" + conn.ID.Hex()

	rec := a.do(http.MethodGet, path, "", nil)
	wantStatus(t, rec, http.StatusOK)

	rec = a.do(http.MethodGet, "/api/connections/user/"+alice.id, "", nil)
	wantStatus(t, rec, http.StatusOK)
	if list := decode[[]models.ConnectionView](t, rec); len(list) != 1 {
		t.Errorf("user connections = %d", len(list))
	}

	// JSON edits by the owner.
	rec = a.do(http.MethodPut, path, alice.token, map[string]string{"context": "Edited", "tags": "a, b"})
	wantStatus(t, rec, http.StatusOK)
	if v := decode[models.ConnectionView](t, rec); v.Context != "Edited" || len(v.Tags) != 2 {
		t.Errorf("edited = %+v", v)
	}
	rec = a.do(http.MethodPut, path, bob.token, map[string]string{"context": "hijack"})
	wantError(t, rec, http.StatusForbidden, social.MsgUpdateForbidden)

	// Multipart edit replaces the screenshot.
	rec = a.do(http.MethodPut, path, alice.token, form(t, nil, map[string][]byte{"screenshot": pngBytes}))
	wantStatus(t, rec, http.StatusOK)
	if v := decode[models.ConnectionView](t, rec); v.ScreenshotURL == "" || v.Context != "Edited" {
		t.Errorf("after screenshot edit = %+v", v)
	}

	rec = a.do(http.MethodPost, path+"/like", bob.token, nil)
	wantStatus(t, rec, http.StatusOK)
	if v := decode[models.ConnectionView](t, rec); len(v.Likes) != 1 {
		t.Errorf("likes = %v", v.Likes)
	}
	rec = a.do(http.MethodPost, path+"/like", bob.token, nil)
	if v := decode[models.ConnectionView](t, rec); len(v.Likes) != 0 {
		t.Errorf("likes after second toggle = %v", v.Likes)
	}

	rec = a.do(http.MethodPost, path+"/favorite", bob.token, nil)
	wantStatus(t, rec, http.StatusOK)
	rec = a.do(http.MethodGet, "/api/users/me/favorites", bob.token, nil)
	wantStatus(t, rec, http.StatusOK)
	if favs := decode[[]models.ConnectionView](t, rec); len(favs) != 1 || favs[0].ID != conn.ID {
		t.Errorf("favorites = %+v", favs)
	}

	rec = a.do(http.MethodDelete, path, bob.token, nil)
	wantError(t, rec, http.StatusForbidden, social.MsgDeleteForbidden)

	rec = a.do(http.MethodDelete, path, alice.token, nil)
	wantStatus(t, rec, http.StatusOK)
	if msg := decode[models.MessageResponse](t, rec); msg.Message != social.MsgConnectionRemoved {
		t.Errorf("message = %q", msg.Message)
	}

	wantError(t, a.do(http.MethodGet, path, "", nil), http.StatusNotFound, social.MsgConnectionNotFound)
	rec = a.do(http.MethodGet, "/api/users/me/favorites", bob.token, nil)
	if favs := decode[[]models.ConnectionView](t, rec); len(favs) != 0 {
		t.Errorf("favorites after delete = %d", len(favs))
	}
	entries, _ := os.ReadDir(a.cfg.Media.UploadsDir)
	if len(entries) != 0 {
		t.Errorf("screenshots left behind: %d", len(entries))
	}
}
