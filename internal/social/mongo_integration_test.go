// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

//go:build integration

package social

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/authz"
	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/testinfra"
)

func newMongoService(t *testing.T) (*Service, *database.MongoStore) {
	t.Helper()
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	container, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { testinfra.CleanupContainer(t, context.Background(), container) })

	store, err := database.NewMongoStore(ctx, &config.DatabaseConfig{
		URI:            container.URI,
		Name:           "moviebooks_test",
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	cfg := testConfig()
	images, err := media.NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatal(err)
	}
	enforcer, err := authz.New(cfg.Authz)
	if err != nil {
		t.Fatal(err)
	}
	jwt, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := New(cfg, Deps{Store: store, Media: images, Authz: enforcer, JWT: jwt, Events: &recordingPublisher{}})
	if err != nil {
		t.Fatal(err)
	}
	return svc, store
}

func count(t *testing.T, store *database.MongoStore, coll string) int64 {
	t.Helper()
	n, err := store.Database().Collection(coll).CountDocuments(context.Background(), bson.M{})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestMongo_ConnectionLifecycle(t *testing.T) {
	svc, store := newMongoService(t)
	ctx := context.Background()

	reg := func(name string) bson.ObjectID {
		res, err := svc.Register(ctx, RegisterInput{Username: name, Email: name + "@example.com", Password: "secret1"})
		if err != nil {
			t.Fatal(err)
		}
		return res.ID
	}
	alice := reg("alice")
	bob := reg("bob")

	_, err := svc.Register(ctx, RegisterInput{Username: "alice2", Email: "ALICE@example.com", Password: "secret1"})
	wantKind(t, err, KindConflict, MsgUserExists)

	conn, err := svc.CreateConnection(ctx, alice, ConnectionInput{
		MovieTitle: "Arrival",
		Director:   "Denis Villeneuve",
		BookTitle:  "Story of Your Life",
		Author:     "Ted Chiang",
		Tags:       "sci-fi, language",
	})
	if err != nil {
		t.Fatal(err)
	}
	// Same titles, different case: the catalog entries are shared.
	if _, err := svc.CreateConnection(ctx, bob, ConnectionInput{MovieTitle: "arrival", BookTitle: "story of your life"}); err != nil {
		t.Fatal(err)
	}
	if count(t, store, database.CollMovies) != 1 || count(t, store, database.CollBooks) != 1 {
		t.Error("titles not shared across connections")
	}

	if _, err := svc.ToggleLike(ctx, bob, conn.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ToggleFavorite(ctx, bob, conn.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddComment(ctx, bob, conn.ID, "Heptapods!"); err != nil {
		t.Fatal(err)
	}

	page, err := svc.Feed(ctx, models.FeedFilter{Tags: []string{"language"}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || len(page.Connections) != 1 || page.Connections[0].ID != conn.ID {
		t.Fatalf("feed = %+v", page)
	}
	v := page.Connections[0]
	if v.UserRef == nil || v.UserRef.Username != "alice" || len(v.Likes) != 1 {
		t.Errorf("view not populated: %+v", v)
	}

	page, err = svc.Feed(ctx, models.FeedFilter{Director: "denis villeneuve"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Errorf("director filter total = %d, want 2", page.Total)
	}

	list, err := svc.Notifications(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if list.Unread != 3 {
		t.Errorf("unread = %d, want 3", list.Unread)
	}

	if err := svc.DeleteConnection(ctx, alice, conn.ID); err != nil {
		t.Fatal(err)
	}
	if n := count(t, store, database.CollComments); n != 0 {
		t.Errorf("comments = %d, want 0", n)
	}
	if n := count(t, store, database.CollNotifications); n != 0 {
		t.Errorf("notifications = %d, want 0", n)
	}
	u, err := store.GetUserByID(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Favorites) != 0 {
		t.Errorf("favorites = %v", u.Favorites)
	}
}

func TestMongo_FollowIndex(t *testing.T) {
	svc, _ := newMongoService(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Follow(ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	_, err = svc.Follow(ctx, a.ID, b.ID)
	wantKind(t, err, KindConflict, MsgAlreadyFollowing)

	counts, err := svc.FollowCounts(ctx, b.ID)
	if err != nil || counts.Followers != 1 {
		t.Errorf("counts = %+v, %v", counts, err)
	}
}
