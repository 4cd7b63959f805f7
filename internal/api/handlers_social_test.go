// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/social"
)

func TestComments(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")
	carol := a.register("carol")
	conn := a.connect(alice, "Arrival", "Story of Your Life", nil)
	path := "/api/connections/" + conn.ID.Hex() + "/comments"

	tests := []struct {
		name   string
		text   string
		status int
	}{
		{"empty", "  ", http.StatusBadRequest},
		{"too long", strings.Repeat("x", models.MaxCommentLength+1), http.StatusBadRequest},
		{"ok", "Loved it", http.StatusCreated},
	}
	for _, tt := range tests {
		rec := a.do(http.MethodPost, path, bob.token, map[string]string{"text": tt.text})
		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.status)
		}
	}

	rec := a.do(http.MethodGet, path, "", nil)
	wantStatus(t, rec, http.StatusOK)
	list := decode[[]models.CommentView](t, rec)
	if len(list) != 1 || list[0].User == nil || list[0].User.Username != "bob" {
		t.Fatalf("comments = %+v", list)
	}
	commentPath := "/api/comments/" + list[0].ID.Hex()

	rec = a.do(http.MethodPut, commentPath, carol.token, map[string]string{"text": "mine now"})
	wantError(t, rec, http.StatusUnauthorized, social.MsgCommentForbidden)
	rec = a.do(http.MethodDelete, commentPath, carol.token, nil)
	wantError(t, rec, http.StatusUnauthorized, social.MsgCommentForbidden)

	rec = a.do(http.MethodPut, commentPath, bob.token, map[string]string{"text": "Loved it twice"})
	wantStatus(t, rec, http.StatusOK)
	if c := decode[models.CommentView](t, rec); c.Text != "Loved it twice" {
		t.Errorf("text = %q", c.Text)
	}

	rec = a.do(http.MethodDelete, commentPath, bob.token, nil)
	wantStatus(t, rec, http.StatusOK)
	if msg := decode[models.MessageResponse](t, rec); msg.Message != social.MsgCommentRemoved {
		t.Errorf("message = %q", msg.Message)
	}
	wantError(t, a.do(http.MethodDelete, commentPath, bob.token, nil), http.StatusNotFound, social.MsgCommentNotFound)

	missing := "/api/connections/" + strings.Repeat("b", 24) + "/comments"
	wantError(t, a.do(http.MethodGet, missing, "", nil), http.StatusNotFound, social.MsgConnectionNotFound)
}

func TestFollows(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")

	wantError(t, a.do(http.MethodPost, "/api/follows/"+alice.id, alice.token, nil),
		http.StatusBadRequest, social.MsgCannotFollowSelf)

	rec := a.do(http.MethodPost, "/api/follows/"+bob.id, alice.token, nil)
	wantStatus(t, rec, http.StatusCreated)
	if f := decode[models.Follow](t, rec); f.Follower.Hex() != alice.id || f.Followee.Hex() != bob.id {
		t.Errorf("follow = %+v", f)
	}
	wantError(t, a.do(http.MethodPost, "/api/follows/"+bob.id, alice.token, nil),
		http.StatusBadRequest, social.MsgAlreadyFollowing)

	rec = a.do(http.MethodGet, "/api/follows/is-following/"+bob.id, alice.token, nil)
	wantStatus(t, rec, http.StatusOK)
	if st := decode[models.FollowStatus](t, rec); !st.IsFollowing || st.IsSelf {
		t.Errorf("status = %+v", st)
	}

	rec = a.do(http.MethodGet, "/api/follows/"+bob.id, "", nil)
	wantStatus(t, rec, http.StatusOK)
	if c := decode[models.FollowCounts](t, rec); c.Followers != 1 || c.Following != 0 {
		t.Errorf("counts = %+v", c)
	}

	rec = a.do(http.MethodGet, "/api/follows/followers/"+bob.id, "", nil)
	if list := decode[[]models.UserSummary](t, rec); len(list) != 1 || list[0].Username != "alice" {
		t.Errorf("followers = %+v", list)
	}
	rec = a.do(http.MethodGet, "/api/follows/following/"+alice.id, "", nil)
	if list := decode[[]models.UserSummary](t, rec); len(list) != 1 || list[0].Username != "bob" {
		t.Errorf("following = %+v", list)
	}

	rec = a.do(http.MethodGet, "/api/users/"+bob.id, "", nil)
	wantStatus(t, rec, http.StatusOK)
	if p := decode[models.UserProfile](t, rec); p.Followers != 1 || p.Viewer != nil {
		t.Errorf("anonymous profile = %+v", p)
	}
	rec = a.do(http.MethodGet, "/api/users/"+bob.id, alice.token, nil)
	wantStatus(t, rec, http.StatusOK)
	if p := decode[models.UserProfile](t, rec); p.Viewer == nil || !p.Viewer.IsFollowing || p.Viewer.IsSelf {
		t.Errorf("viewer = %+v, want following", p.Viewer)
	}
	rec = a.do(http.MethodGet, "/api/users/"+bob.id, bob.token, nil)
	if p := decode[models.UserProfile](t, rec); p.Viewer == nil || !p.Viewer.IsSelf {
		t.Errorf("self viewer = %+v", p.Viewer)
	}
	// A bad token on a public route falls back to anonymous.
	rec = a.do(http.MethodGet, "/api/users/"+bob.id, "not-a-token", nil)
	wantStatus(t, rec, http.StatusOK)

	rec = a.do(http.MethodDelete, "/api/follows/"+bob.id, alice.token, nil)
	wantStatus(t, rec, http.StatusOK)
	wantError(t, a.do(http.MethodDelete, "/api/follows/"+bob.id, alice.token, nil),
		http.StatusNotFound, social.MsgNotFollowing)
}

func TestNotifications(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")
	conn := a.connect(alice, "Arrival", "Story of Your Life", nil)

	wantStatus(t, a.do(http.MethodPost, "/api/connections/"+conn.ID.Hex()+"/like", bob.token, nil), http.StatusOK)
	wantStatus(t, a.do(http.MethodPost, "/api/follows/"+alice.id, bob.token, nil), http.StatusCreated)

	rec := a.do(http.MethodGet, "/api/notifications", alice.token, nil)
	wantStatus(t, rec, http.StatusOK)
	list := decode[models.NotificationList](t, rec)
	if len(list.Notifications) != 2 || list.Unread != 2 {
		t.Fatalf("notifications = %+v", list)
	}
	if list.Notifications[0].Type != models.NotificationNewFollower || list.Notifications[0].Sender.Username != "bob" {
		t.Errorf("newest = %+v", list.Notifications[0])
	}

	first := "/api/notifications/" + list.Notifications[0].ID.Hex() + "/read"
	wantError(t, a.do(http.MethodPatch, first, bob.token, nil), http.StatusNotFound, social.MsgNotificationNotFound)

	rec = a.do(http.MethodPatch, first, alice.token, nil)
	wantStatus(t, rec, http.StatusOK)
	if n := decode[models.NotificationView](t, rec); !n.Read {
		t.Error("notification not marked read")
	}

	rec = a.do(http.MethodPatch, "/api/notifications/read-all", alice.token, nil)
	wantStatus(t, rec, http.StatusOK)
	if res := decode[models.ReadAllResponse](t, rec); res.Modified != 1 || res.Message != social.MsgAllRead {
		t.Errorf("read-all = %+v", res)
	}

	// No hub is wired in tests.
	rec = a.do(http.MethodGet, "/api/notifications/ws?token="+alice.token, "", nil)
	wantStatus(t, rec, http.StatusServiceUnavailable)
	wantStatus(t, a.do(http.MethodGet, "/api/notifications/ws", "", nil), http.StatusUnauthorized)
}

func TestTitles(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	alice := a.register("alice")
	conn := a.connect(alice, "Dune", "Dune", map[string]string{"director": "Denis Villeneuve"})
	a.connect(alice, "dune", "Dune Messiah", nil)
	a.connect(alice, "Dunkirk", "Atonement", nil)

	rec := a.do(http.MethodGet, "/api/movies?search=dun", "", nil)
	wantStatus(t, rec, http.StatusOK)
	if movies := decode[[]models.Movie](t, rec); len(movies) != 2 {
		t.Errorf("movies = %+v", movies)
	}

	moviePath := "/api/movies/" + conn.MovieRef.ID.Hex()
	rec = a.do(http.MethodGet, moviePath, "", nil)
	wantStatus(t, rec, http.StatusOK)
	if m := decode[models.Movie](t, rec); m.Director != "Denis Villeneuve" {
		t.Errorf("movie = %+v", m)
	}
	rec = a.do(http.MethodGet, moviePath+"/connections", "", nil)
	if list := decode[[]models.ConnectionView](t, rec); len(list) != 2 {
		t.Errorf("movie connections = %d, want 2", len(list))
	}

	bookPath := "/api/books/" + conn.BookRef.ID.Hex()
	wantStatus(t, a.do(http.MethodGet, bookPath, "", nil), http.StatusOK)
	rec = a.do(http.MethodGet, bookPath+"/connections", "", nil)
	if list := decode[[]models.ConnectionView](t, rec); len(list) != 1 {
		t.Errorf("book connections = %d, want 1", len(list))
	}
	rec = a.do(http.MethodGet, "/api/books?search=DUNE", "", nil)
	if books := decode[[]models.Book](t, rec); len(books) != 2 {
		t.Errorf("books = %+v", books)
	}

	wantError(t, a.do(http.MethodGet, "/api/movies/"+strings.Repeat("c", 24), "", nil),
		http.StatusNotFound, social.MsgMovieNotFound)
	wantError(t, a.do(http.MethodGet, "/api/books/xyz", "", nil), http.StatusBadRequest, social.MsgInvalidID)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	alice := a.register("alice")

	rec := a.do(http.MethodPut, "/api/users/me", alice.token, map[string]string{"bio": "Reads first", "location": "Lisbon"})
	wantStatus(t, rec, http.StatusOK)
	if p := decode[models.UserProfile](t, rec); p.Bio != "Reads first" || p.Location != "Lisbon" {
		t.Errorf("profile = %+v", p)
	}

	body := form(t, map[string]string{"displayName": "Alice"}, map[string][]byte{"profilePicture": pngBytes})
	rec = a.do(http.MethodPut, "/api/users/me", alice.token, body)
	wantStatus(t, rec, http.StatusOK)
	p := decode[models.UserProfile](t, rec)
	if p.DisplayName != "Alice" || p.Bio != "Reads first" || p.ProfilePictureURL == "" {
		t.Errorf("profile = %+v", p)
	}
	wantStatus(t, a.do(http.MethodGet, p.ProfilePictureURL, "", nil), http.StatusOK)

	rec = a.do(http.MethodPut, "/api/users/me", alice.token, map[string]string{"displayName": strings.Repeat("a", 51)})
	wantError(t, rec, http.StatusBadRequest, "")
}

func TestHealth(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	a.register("alice")

	rec := a.do(http.MethodGet, "/api/health", "", nil)
	wantStatus(t, rec, http.StatusOK)
	h := decode[models.HealthStatus](t, rec)
	if h.Status != statusOK || h.Checks["database"] != statusOK || h.Database != "memory" {
		t.Errorf("health = %+v", h)
	}
	found := false
	for _, e := range h.Endpoints {
		if e.Route == "POST /api/auth/register" {
			found = true
		}
	}
	if !found {
		t.Errorf("register route missing from latency stats: %+v", h.Endpoints)
	}

	wantStatus(t, a.do(http.MethodGet, "/api/health/live", "", nil), http.StatusOK)
	wantStatus(t, a.do(http.MethodGet, "/api/health/ready", "", nil), http.StatusOK)

	rec = a.do(http.MethodGet, "/metrics", "", nil)
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "moviebooks_api_requests_total") {
		t.Error("metrics endpoint missing API counters")
	}
}
