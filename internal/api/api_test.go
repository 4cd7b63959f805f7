// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/authz"
	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/database/memdb"
	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/middleware"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/outbox"
	"github.com/tomtom215/moviebooks/internal/social"
)

const testSecret = "api-test-secret-key-of-at-least-32-chars"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *memdb.Store
	cfg     *config.Config
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Environment: config.EnvProduction},
		API:      config.APIConfig{PageSize: 2, NotificationLimit: 50, SearchLimit: 20},
		Database: config.DatabaseConfig{Backend: config.DatabaseMemory, QueryTimeout: 5 * time.Second},
		Security: config.SecurityConfig{
			JWTSecret:         testSecret,
			TokenTimeout:      time.Hour,
			BcryptCost:        bcrypt.MinCost,
			RateLimitDisabled: true,
		},
		Media: config.MediaConfig{
			Backend:        config.MediaLocal,
			UploadsDir:     t.TempDir(),
			PublicPath:     "/uploads",
			MaxUploadBytes: 1 << 20,
		},
		Cache: config.CacheConfig{Enabled: true, TTL: time.Minute},
	}
}

func newTestAPI(t *testing.T, mutate ...func(*config.Config)) *testAPI {
	t.Helper()
	cfg := testConfig(t)
	for _, m := range mutate {
		m(cfg)
	}

	store := memdb.New()
	images, err := media.NewLocalStore(cfg.Media.UploadsDir, cfg.Media.PublicPath)
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

	svc, err := social.New(cfg, social.Deps{
		Store:  store,
		Media:  images,
		Authz:  enforcer,
		JWT:    jwt,
		Outbox: log,
	})
	if err != nil {
		t.Fatal(err)
	}

	h := NewHandler(cfg, svc, nil, middleware.NewPerformanceMonitor(100, 0))
	return &testAPI{t: t, handler: NewRouter(h, jwt).SetupChi(), store: store, cfg: cfg}
}

// do sends a request. body may be nil, a []byte, or a value encoded as JSON.
func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case *multipartBody:
		r, contentType = &b.buf, b.contentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			a.t.Fatal(err)
		}
		r, contentType = bytes.NewReader(data), "application/json"
	}

	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T from %q: %v", v, rec.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, status, rec.Body.String())
	}
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	wantStatus(t, rec, status)
	resp := decode[models.ErrorResponse](t, rec)
	if message != "" && resp.Message != message {
		t.Errorf("message = %q, want %q", resp.Message, message)
	}
}

type account struct {
	id    string
	token string
}

func (a *testAPI) register(username string) account {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	})
	wantStatus(a.t, rec, http.StatusCreated)
	res := decode[models.AuthResponse](a.t, rec)
	return account{id: res.ID.Hex(), token: res.Token}
}

type multipartBody struct {
	buf         bytes.Buffer
	contentType string
}

// form builds a multipart body. Files map field name to content.
func form(t *testing.T, fields map[string]string, files map[string][]byte) *multipartBody {
	t.Helper()
	mb := &multipartBody{}
	w := multipart.NewWriter(&mb.buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for field, data := range files {
		fw, err := w.CreateFormFile(field, field+".png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	mb.contentType = w.FormDataContentType()
	return mb
}

func (a *testAPI) connect(owner account, movie, book string, extra map[string]string) models.ConnectionView {
	a.t.Helper()
	fields := map[string]string{"movieTitle": movie, "bookTitle": book}
	for k, v := range extra {
		fields[k] = v
	}
	rec := a.do(http.MethodPost, "/api/connections", owner.token, form(a.t, fields, nil))
	wantStatus(a.t, rec, http.StatusCreated)
	return decode[models.ConnectionView](a.t, rec)
}
