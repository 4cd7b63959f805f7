// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package social

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/models"
)

func TestToggleLike(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	conn := f.connect(t, alice, "Arrival", "Story of Your Life")

	v, err := f.svc.ToggleLike(f.ctx, bob, conn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Likes) != 1 || v.Likes[0] != bob {
		t.Fatalf("likes = %v", v.Likes)
	}

	list, err := f.svc.Notifications(f.ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Notifications) != 1 || list.Unread != 1 {
		t.Fatalf("notifications = %+v", list)
	}
	n := list.Notifications[0]
	if n.Type != models.NotificationLike || n.Message != "bob liked your connection" ||
		n.Link != "/connections/"+conn.ID.Hex() || n.Sender == nil || n.Sender.Username != "bob" {
		t.Errorf("notification = %+v", n)
	}
	if f.pub.count() != 1 {
		t.Errorf("published = %d, want 1", f.pub.count())
	}

	// Second like undoes the first and does not notify.
	v, err = f.svc.ToggleLike(f.ctx, bob, conn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Likes) != 0 {
		t.Errorf("likes after unlike = %v", v.Likes)
	}

	// Owners can like their own connection without notifying themselves.
	if _, err := f.svc.ToggleLike(f.ctx, alice, conn.ID); err != nil {
		t.Fatal(err)
	}
	list, _ = f.svc.Notifications(f.ctx, alice)
	if len(list.Notifications) != 1 {
		t.Errorf("notifications = %d, want 1", len(list.Notifications))
	}

	_, err = f.svc.ToggleLike(f.ctx, bob, bson.NewObjectID())
	wantKind(t, err, KindNotFound, MsgConnectionNotFound)
}

func TestToggleFavorite(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	conn := f.connect(t, alice, "Arrival", "Story of Your Life")

	v, err := f.svc.ToggleFavorite(f.ctx, bob, conn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Favorites) != 1 {
		t.Fatalf("favorites = %v", v.Favorites)
	}
	u, _ := f.store.GetUserByID(f.ctx, bob)
	if len(u.Favorites) != 1 || u.Favorites[0] != conn.ID {
		t.Fatalf("user favorites = %v", u.Favorites)
	}
	favs, err := f.svc.Favorites(f.ctx, bob)
	if err != nil || len(favs) != 1 {
		t.Errorf("Favorites = %d, %v", len(favs), err)
	}

	list, _ := f.svc.Notifications(f.ctx, alice)
	if len(list.Notifications) != 1 || list.Notifications[0].Type != models.NotificationFavorite {
		t.Errorf("notifications = %+v", list.Notifications)
	}

	v, err = f.svc.ToggleFavorite(f.ctx, bob, conn.ID)
	if err != nil {
		t.Fatal(err)
	}
	u, _ = f.store.GetUserByID(f.ctx, bob)
	if len(v.Favorites) != 0 || len(u.Favorites) != 0 {
		t.Errorf("favorites not removed: conn=%v user=%v", v.Favorites, u.Favorites)
	}
}

func TestComments(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")
	conn := f.connect(t, alice, "Arrival", "Story of Your Life")

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too long", strings.Repeat("a", models.MaxCommentLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddComment(f.ctx, bob, conn.ID, tt.text)
			wantKind(t, err, KindValidation, MsgCommentText)
		})
	}

	_, err := f.svc.AddComment(f.ctx, bob, bson.NewObjectID(), "hello")
	wantKind(t, err, KindNotFound, MsgConnectionNotFound)

	c, err := f.svc.AddComment(f.ctx, bob, conn.ID, "  The heptapods!  ")
	if err != nil {
		t.Fatal(err)
	}
	if c.Text != "The heptapods!" || c.User == nil || c.User.Username != "bob" {
		t.Errorf("comment = %+v", c)
	}
	if _, err := f.svc.AddComment(f.ctx, alice, conn.ID, "Thanks"); err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.Comments(f.ctx, conn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != c.ID {
		t.Errorf("comments not oldest first: %+v", list)
	}

	// Only bob's comment notified alice.
	notes, _ := f.svc.Notifications(f.ctx, alice)
	if len(notes.Notifications) != 1 || notes.Notifications[0].Type != models.NotificationComment {
		t.Errorf("notifications = %+v", notes.Notifications)
	}

	_, err = f.svc.UpdateComment(f.ctx, carol, c.ID, "hijack")
	wantKind(t, err, KindUnauthorized, MsgCommentForbidden)

	edited, err := f.svc.UpdateComment(f.ctx, bob, c.ID, "The heptapods, again")
	if err != nil {
		t.Fatal(err)
	}
	if edited.Text != "The heptapods, again" || edited.User.Username != "bob" {
		t.Errorf("edited = %+v", edited)
	}

	err = f.svc.DeleteComment(f.ctx, carol, c.ID)
	wantKind(t, err, KindUnauthorized, MsgCommentForbidden)

	f.makeAdmin(t, carol)
	_, err = f.svc.UpdateComment(f.ctx, carol, c.ID, "admins cannot edit")
	wantKind(t, err, KindUnauthorized, MsgCommentForbidden)
	if err := f.svc.DeleteComment(f.ctx, carol, c.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	err = f.svc.DeleteComment(f.ctx, bob, c.ID)
	wantKind(t, err, KindNotFound, MsgCommentNotFound)
}

func TestFollowGraph(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	_, err := f.svc.Follow(f.ctx, alice, alice)
	wantKind(t, err, KindValidation, MsgCannotFollowSelf)

	_, err = f.svc.Follow(f.ctx, alice, bson.NewObjectID())
	wantKind(t, err, KindNotFound, MsgUserNotFound)

	follow, err := f.svc.Follow(f.ctx, alice, bob)
	if err != nil {
		t.Fatal(err)
	}
	if follow.Follower != alice || follow.Followee != bob {
		t.Errorf("follow = %+v", follow)
	}

	_, err = f.svc.Follow(f.ctx, alice, bob)
	wantKind(t, err, KindConflict, MsgAlreadyFollowing)

	notes, _ := f.svc.Notifications(f.ctx, bob)
	if len(notes.Notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes.Notifications))
	}
	n := notes.Notifications[0]
	if n.Type != models.NotificationNewFollower || n.Link != models.ProfileLink(alice) || n.Connection != nil {
		t.Errorf("notification = %+v", n)
	}

	status, err := f.svc.FollowStatus(f.ctx, alice, bob)
	if err != nil || !status.IsFollowing || status.IsSelf {
		t.Errorf("status = %+v, %v", status, err)
	}
	status, _ = f.svc.FollowStatus(f.ctx, alice, alice)
	if !status.IsSelf || status.IsFollowing {
		t.Errorf("self status = %+v", status)
	}

	followers, err := f.svc.Followers(f.ctx, bob)
	if err != nil || len(followers) != 1 || followers[0].Username != "alice" {
		t.Errorf("followers = %+v, %v", followers, err)
	}
	following, err := f.svc.Following(f.ctx, alice)
	if err != nil || len(following) != 1 || following[0].ID != bob {
		t.Errorf("following = %+v, %v", following, err)
	}
	counts, err := f.svc.FollowCounts(f.ctx, bob)
	if err != nil || counts.Followers != 1 || counts.Following != 0 {
		t.Errorf("counts = %+v, %v", counts, err)
	}

	if err := f.svc.Unfollow(f.ctx, alice, bob); err != nil {
		t.Fatal(err)
	}
	err = f.svc.Unfollow(f.ctx, alice, bob)
	wantKind(t, err, KindNotFound, MsgNotFollowing)

	// Unfollowing sends nothing.
	notes, _ = f.svc.Notifications(f.ctx, bob)
	if len(notes.Notifications) != 1 {
		t.Errorf("notifications = %d, want 1", len(notes.Notifications))
	}
}

func TestNotificationsRead(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")
	if _, err := f.svc.Follow(f.ctx, bob, alice); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Follow(f.ctx, carol, alice); err != nil {
		t.Fatal(err)
	}

	list, _ := f.svc.Notifications(f.ctx, alice)
	if list.Unread != 2 {
		t.Fatalf("unread = %d, want 2", list.Unread)
	}
	target := list.Notifications[0].ID

	_, err := f.svc.MarkNotificationRead(f.ctx, bob, target)
	wantKind(t, err, KindNotFound, MsgNotificationNotFound)

	n, err := f.svc.MarkNotificationRead(f.ctx, alice, target)
	if err != nil || !n.Read {
		t.Fatalf("MarkNotificationRead = %+v, %v", n, err)
	}

	res, err := f.svc.MarkAllNotificationsRead(f.ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if res.Modified != 1 || res.Message != MsgAllRead {
		t.Errorf("read-all = %+v", res)
	}
	list, _ = f.svc.Notifications(f.ctx, alice)
	if list.Unread != 0 {
		t.Errorf("unread = %d, want 0", list.Unread)
	}
}
