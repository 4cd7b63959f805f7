// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seenLogging, seenChi string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenLogging = logging.RequestIDFromContext(r.Context())
		seenChi = chimiddleware.GetReqID(r.Context())
	}))

	t.Run("generates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		got := rec.Header().Get(RequestIDHeader)
		if got == "" || got != seenLogging || got != seenChi {
			t.Errorf("header=%q logging=%q chi=%q", got, seenLogging, seenChi)
		}
	})

	t.Run("propagates upstream id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "upstream-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Header().Get(RequestIDHeader) != "upstream-123" || seenLogging != "upstream-123" {
			t.Errorf("upstream id not reused: %q", rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if len(rec.Header().Get(RequestIDHeader)) > maxRequestIDLength {
			t.Error("oversized id accepted")
		}
	})
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/metrics-test/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics-test/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter); got != before+3 {
		t.Errorf("counter = %v, want %v", got, before+3)
	}
}

func TestCompression(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("moviebooks ", 200)
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, body)
	}))

	tests := []struct {
		name     string
		encoding string
		upgrade  string
		wantGzip bool
	}{
		{"gzip accepted", "gzip, deflate", "", true},
		{"no accept-encoding", "", "", false},
		{"websocket upgrade", "gzip", "websocket", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.encoding != "" {
				req.Header.Set("Accept-Encoding", tt.encoding)
			}
			if tt.upgrade != "" {
				req.Header.Set("Upgrade", tt.upgrade)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			gotGzip := rec.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.wantGzip {
				t.Fatalf("gzip = %v, want %v", gotGzip, tt.wantGzip)
			}
			var got []byte
			if gotGzip {
				zr, err := gzip.NewReader(rec.Body)
				if err != nil {
					t.Fatal(err)
				}
				got, err = io.ReadAll(zr)
				if err != nil {
					t.Fatal(err)
				}
			} else {
				got = rec.Body.Bytes()
			}
			if string(got) != body {
				t.Error("body mismatch")
			}
		})
	}
}

func TestQueryTimeout(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	var ok bool
	h := QueryTimeout(50 * time.Millisecond)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !ok || time.Until(deadline) > 50*time.Millisecond {
		t.Errorf("deadline = %v, %v", deadline, ok)
	}

	h = QueryTimeout(0)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background())
	h.ServeHTTP(httptest.NewRecorder(), req)
	if ok {
		t.Error("zero timeout still set a deadline")
	}
}

func TestPerformanceMonitor(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(4, time.Hour)
	for i := 1; i <= 5; i++ {
		pm.Record("GET /a", time.Duration(i)*time.Millisecond)
	}
	pm.Record("GET /b", 7*time.Millisecond)

	stats := pm.Stats()
	if len(stats) != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	// Window of 4 keeps /a samples 3,4,5 and /b 7.
	a := stats[0]
	if a.Route != "GET /a" || a.RequestCount != 3 || a.MaxDuration != 5 || a.P50Duration != 4 {
		t.Errorf("a = %+v", a)
	}
	if stats[1].Route != "GET /b" || stats[1].AvgDuration != 7 {
		t.Errorf("b = %+v", stats[1])
	}

	r := chi.NewRouter()
	mon := NewPerformanceMonitor(10, 0)
	r.Use(mon.Middleware)
	r.Get("/users/{id}", func(http.ResponseWriter, *http.Request) {})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/42", nil))
	if s := mon.Stats(); len(s) != 1 || s[0].Route != "GET /users/{id}" {
		t.Errorf("route stats = %+v", s)
	}
}
