// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package outbox

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/moviebooks/internal/config"
)

type notifyPayload struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

func openTestLog(t *testing.T) *BadgerLog {
	t.Helper()
	l, err := Open(config.OutboxConfig{InMemory: true, EntryTTL: time.Hour})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestBadgerLog_Lifecycle(t *testing.T) {
	t.Parallel()
	l := openTestLog(t)
	ctx := context.Background()

	entry, err := l.Append(ctx, "notify", notifyPayload{Recipient: "r1", Message: "hi"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	pending, err := l.Pending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != entry.ID {
		t.Fatalf("pending = %+v", pending)
	}
	var p notifyPayload
	if err := pending[0].UnmarshalPayload(&p); err != nil || p.Message != "hi" {
		t.Errorf("payload = %+v, %v", p, err)
	}

	if err := l.RecordFailure(ctx, entry.ID, errors.New("db down")); err != nil {
		t.Fatal(err)
	}
	pending, _ = l.Pending(ctx)
	if pending[0].Attempts != 1 || pending[0].LastError != "db down" || pending[0].LastAttemptAt.IsZero() {
		t.Errorf("after failure = %+v", pending[0])
	}

	if err := l.Confirm(ctx, entry.ID); err != nil {
		t.Fatal(err)
	}
	pending, _ = l.Pending(ctx)
	if len(pending) != 0 {
		t.Errorf("pending after confirm = %d", len(pending))
	}
	if !l.IsConfirmed(entry.ID) {
		t.Error("entry not marked confirmed")
	}
	if err := l.Confirm(ctx, entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second confirm err = %v", err)
	}
}

func TestBadgerLog_Errors(t *testing.T) {
	t.Parallel()
	l := openTestLog(t)
	ctx := context.Background()

	if _, err := l.Append(ctx, "", nil); !errors.Is(err, ErrEmptyKind) {
		t.Errorf("empty kind err = %v", err)
	}
	if err := l.Delete(ctx, "missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("delete missing err = %v", err)
	}

	if !l.TryClaim("a") {
		t.Fatal("first claim refused")
	}
	if l.TryClaim("a") {
		t.Error("second claim granted")
	}
	l.Release("a")
	if !l.TryClaim("a") {
		t.Error("claim after release refused")
	}

	_ = l.Close()
	if _, err := l.Append(ctx, "notify", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("append after close err = %v", err)
	}
}

func TestRunner_Success(t *testing.T) {
	t.Parallel()
	l := openTestLog(t)
	var calls atomic.Int32
	r := NewRunner(l, DispatcherFunc(func(_ context.Context, e *Entry) error {
		calls.Add(1)
		if e.Kind != "notify" {
			t.Errorf("kind = %q", e.Kind)
		}
		return nil
	}))

	if err := r.Run(context.Background(), "notify", notifyPayload{Message: "x"}); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d", calls.Load())
	}
	pending, _ := l.Pending(context.Background())
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestRunner_FailureLeftPending(t *testing.T) {
	t.Parallel()
	l := openTestLog(t)
	boom := errors.New("boom")
	r := NewRunner(l, DispatcherFunc(func(context.Context, *Entry) error { return boom }))

	if err := r.Run(context.Background(), "favorites.add", map[string]string{"user": "u"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	pending, _ := l.Pending(context.Background())
	if len(pending) != 1 || pending[0].Attempts != 1 {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestRunner_CanceledContextStillRuns(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran bool
	r := NewRunner(nil, DispatcherFunc(func(ctx context.Context, _ *Entry) error {
		ran = ctx.Err() == nil
		return nil
	}))
	if err := r.Run(ctx, "notify", nil); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("effect saw a canceled context")
	}
}

func TestRunner_EmptyKind(t *testing.T) {
	t.Parallel()
	r := NewRunner(nil, DispatcherFunc(func(context.Context, *Entry) error { return nil }))
	if err := r.Run(context.Background(), "", nil); !errors.Is(err, ErrEmptyKind) {
		t.Errorf("err = %v", err)
	}
}
