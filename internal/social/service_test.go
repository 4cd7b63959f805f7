// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package social

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/authz"
	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/database/memdb"
	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/outbox"
)

const testSecret = "social-test-secret-key-of-32-chars-min"

type recordingPublisher struct {
	mu   sync.Mutex
	sent []*models.NotificationView
}

func (p *recordingPublisher) PublishNotification(_ context.Context, n *models.NotificationView) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type fixture struct {
	svc      *Service
	store    *memdb.Store
	outbox   *outbox.BadgerLog
	pub      *recordingPublisher
	mediaDir string
	ctx      context.Context
}

func testConfig() *config.Config {
	return &config.Config{
		API:      config.APIConfig{PageSize: 10, NotificationLimit: 50, SearchLimit: 20},
		Security: config.SecurityConfig{JWTSecret: testSecret, TokenTimeout: time.Hour, BcryptCost: bcrypt.MinCost},
		Cache:    config.CacheConfig{Enabled: true, TTL: time.Minute},
	}
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	dir := t.TempDir()
	store := memdb.New()
	images, err := media.NewLocalStore(dir, "/uploads")
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
	log, err := outbox.Open(config.OutboxConfig{InMemory: true, EntryTTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = log.Close() })

	pub := &recordingPublisher{}
	svc, err := New(cfg, Deps{
		Store:  store,
		Media:  images,
		Authz:  enforcer,
		JWT:    jwt,
		Outbox: log,
		Events: pub,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{svc: svc, store: store, outbox: log, pub: pub, mediaDir: dir, ctx: context.Background()}
}

func (f *fixture) register(t *testing.T, username string) bson.ObjectID {
	t.Helper()
	res, err := f.svc.Register(f.ctx, RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return res.ID
}

func (f *fixture) connect(t *testing.T, owner bson.ObjectID, movie, book string) *models.ConnectionView {
	t.Helper()
	v, err := f.svc.CreateConnection(f.ctx, owner, ConnectionInput{MovieTitle: movie, BookTitle: book})
	if err != nil {
		t.Fatalf("CreateConnection: %v", err)
	}
	return v
}

// makeAdmin swaps in an enforcer that grants id the admin role.
func (f *fixture) makeAdmin(t *testing.T, id bson.ObjectID) {
	t.Helper()
	e, err := authz.New(config.AuthzConfig{AdminUserIDs: []string{id.Hex()}})
	if err != nil {
		t.Fatal(err)
	}
	f.svc.authz = e
}

func (f *fixture) files(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.mediaDir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngUpload(name string) *media.Upload {
	return &media.Upload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(pngHeader)),
		Body:        bytes.NewReader(pngHeader),
	}
}

func wantKind(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if e.Kind != kind {
		t.Errorf("kind = %s, want %s (%s)", e.Kind, kind, e.Message)
	}
	if msg != "" && e.Message != msg {
		t.Errorf("message = %q, want %q", e.Message, msg)
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	t.Parallel()
	if _, err := New(nil, Deps{}); err == nil {
		t.Error("nil config accepted")
	}
	if _, err := New(testConfig(), Deps{Store: memdb.New()}); err == nil {
		t.Error("missing media store accepted")
	}
}

func TestKind_StatusCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want int
	}{
		{validationError("x"), http.StatusBadRequest},
		{conflictError("x"), http.StatusBadRequest},
		{unauthorizedError("x"), http.StatusUnauthorized},
		{forbiddenError("x"), http.StatusForbidden},
		{notFoundError("x"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err).StatusCode(); got != tt.want {
			t.Errorf("status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()
	id := bson.NewObjectID()
	got, err := ParseID(id.Hex())
	if err != nil || got != id {
		t.Fatalf("ParseID = %v, %v", got, err)
	}
	_, err = ParseID("nope")
	wantKind(t, err, KindValidation, MsgInvalidID)
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.svc.Register(f.ctx, RegisterInput{
		Username: "alice",
		Email:    "  Alice@Example.com ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Email != "alice@example.com" || res.Token == "" {
		t.Errorf("unexpected response %+v", res)
	}
	claims, err := f.svc.jwt.ValidateToken(res.Token)
	if err != nil || claims.UserID() != res.ID.Hex() {
		t.Errorf("token does not identify the user: %v", err)
	}

	_, err = f.svc.Register(f.ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1"})
	wantKind(t, err, KindConflict, MsgUserExists)

	_, err = f.svc.Register(f.ctx, RegisterInput{Username: "a!", Email: "x@example.com", Password: "secret1"})
	wantKind(t, err, KindValidation, "")

	_, err = f.svc.Register(f.ctx, RegisterInput{Username: "bobby", Email: "bob@example.com", Password: "123"})
	wantKind(t, err, KindValidation, "")

	_, err = f.svc.Login(f.ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	wantKind(t, err, KindUnauthorized, MsgInvalidCredentials)

	_, err = f.svc.Login(f.ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	wantKind(t, err, KindUnauthorized, MsgInvalidCredentials)

	login, err := f.svc.Login(f.ctx, LoginInput{Email: "ALICE@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if login.ID != res.ID {
		t.Errorf("login id = %s, want %s", login.ID.Hex(), res.ID.Hex())
	}
}

func TestProfileAndUpdate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.connect(t, alice, "Arrival", "Story of Your Life")
	if _, err := f.svc.Follow(f.ctx, bob, alice); err != nil {
		t.Fatal(err)
	}

	p, err := f.svc.Profile(f.ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if p.Followers != 1 || p.Following != 0 || p.Connections != 1 {
		t.Errorf("profile counts = %+v", p)
	}

	_, err = f.svc.Profile(f.ctx, bson.NewObjectID())
	wantKind(t, err, KindNotFound, MsgUserNotFound)

	bio := "  Reads the book first.  "
	p, err = f.svc.UpdateProfile(f.ctx, alice, ProfileInput{Bio: &bio}, pngUpload("me.png"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Bio != "Reads the book first." || p.ProfilePictureURL == "" {
		t.Errorf("profile = %+v", p)
	}
	first := p.ProfilePictureURL

	p, err = f.svc.UpdateProfile(f.ctx, alice, ProfileInput{}, pngUpload("me2.png"))
	if err != nil {
		t.Fatal(err)
	}
	if p.ProfilePictureURL == first {
		t.Error("picture not replaced")
	}
	if n := f.files(t); n != 1 {
		t.Errorf("media files = %d, want 1 (old picture deleted)", n)
	}

	long := string(bytes.Repeat([]byte("x"), 51))
	_, err = f.svc.UpdateProfile(f.ctx, alice, ProfileInput{DisplayName: &long}, nil)
	wantKind(t, err, KindValidation, "")
}

func TestApplyEffect_NotifyIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	payload := notifyPayload{Notification: models.Notification{
		ID:        bson.NewObjectID(),
		Recipient: alice,
		Sender:    bob,
		Type:      models.NotificationNewFollower,
		Message:   "bob started following you",
		Link:      models.ProfileLink(bob),
		CreatedAt: time.Now().UTC(),
	}}
	entry, err := f.outbox.Append(f.ctx, EffectNotify, payload)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := f.svc.applyEffect(f.ctx, entry); err != nil {
			t.Fatalf("apply #%d: %v", i+1, err)
		}
	}
	if got := f.store.Counts()[database.CollNotifications]; got != 1 {
		t.Errorf("notifications = %d, want 1", got)
	}
	if f.pub.count() != 1 {
		t.Errorf("published %d events, want 1", f.pub.count())
	}

	if err := f.svc.applyEffect(f.ctx, &outbox.Entry{Kind: "bogus"}); err == nil {
		t.Error("unknown effect kind accepted")
	}
}
