// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// captureGlobal swaps the global logger for one writing to a buffer.
// Tests using it must not run in parallel.
func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	prev := SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if idx := strings.LastIndex(line, "\n"); idx >= 0 {
		line = line[idx+1:]
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return out
}

func TestCtx_AddsRequestAndUser(t *testing.T) {
	buf := captureGlobal(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "user-1")
	Ctx(ctx).Info().Msg("hello")

	entry := decodeLine(t, buf)
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
	if entry["user_id"] != "user-1" {
		t.Errorf("user_id = %v, want user-1", entry["user_id"])
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
}

func TestInit_StampsServiceAndEnvironment(t *testing.T) {
	prev := current()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	Init(Config{Level: "debug", Environment: "staging", Output: &buf})
	Debug().Msg("ready")

	entry := decodeLine(t, &buf)
	if entry["service"] != ServiceName || entry["env"] != "staging" || entry["level"] != "debug" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("missing time field")
	}

	// Development defaults to the console writer.
	buf.Reset()
	Init(Config{Environment: "development", Output: &buf})
	Info().Msg("hello")
	if line := strings.TrimSpace(buf.String()); line == "" || strings.HasPrefix(line, "{") {
		t.Errorf("development output = %q, want console format", line)
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}
	if len(GenerateRequestID()) != 36 {
		t.Error("GenerateRequestID() should return a UUID string")
	}
}

func TestSlogHandler_GroupsAndAttrs(t *testing.T) {
	buf := captureGlobal(t)

	logger := NewSlogLogger().With("service", "http-server").WithGroup("supervisor")
	logger.Warn("restarting", slog.Int("failures", 3))

	entry := decodeLine(t, buf)
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry["service"] != "http-server" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["supervisor.failures"] != float64(3) {
		t.Errorf("supervisor.failures = %v", entry["supervisor.failures"])
	}
}

func TestWatermillAdapter(t *testing.T) {
	buf := captureGlobal(t)

	var adapter watermill.LoggerAdapter = NewWatermillAdapter()
	adapter.With(watermill.LogFields{"topic": "notifications.created"}).
		Error("publish failed", errors.New("boom"), watermill.LogFields{"attempt": 2})

	entry := decodeLine(t, buf)
	if entry["component"] != "events" {
		t.Errorf("component = %v, want events", entry["component"])
	}
	if entry["topic"] != "notifications.created" {
		t.Errorf("topic = %v", entry["topic"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
}
