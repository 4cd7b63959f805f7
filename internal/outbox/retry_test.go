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

func TestBackoff(t *testing.T) {
	t.Parallel()
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{5, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := Backoff(time.Second, tt.attempts); got != tt.want {
			t.Errorf("Backoff(1s, %d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

// failingDispatcher fails the first n calls.
func failingDispatcher(n int32, calls *atomic.Int32) Dispatcher {
	return DispatcherFunc(func(context.Context, *Entry) error {
		if calls.Add(1) <= n {
			return errors.New("transient")
		}
		return nil
	})
}

func TestRetryLoop_ProcessPending(t *testing.T) {
	t.Parallel()
	l := openTestLog(t)
	ctx := context.Background()
	if _, err := l.Append(ctx, "notify", notifyPayload{Message: "retry me"}); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	cfg := config.OutboxConfig{RetryBackoff: 10 * time.Minute, MaxRetries: 5, EntryTTL: time.Hour}
	loop := NewRetryLoop(l, failingDispatcher(1, &calls), cfg)

	var clock time.Time
	loop.now = func() time.Time { return clock }

	clock = time.Now().Add(11 * time.Minute)
	stats := loop.ProcessPending(ctx)
	if stats.Failed != 1 || stats.Pending != 1 {
		t.Fatalf("first pass = %+v", stats)
	}

	// Backoff has not elapsed since the failed attempt.
	clock = time.Now()
	stats = loop.ProcessPending(ctx)
	if stats.Skipped != 1 || calls.Load() != 1 {
		t.Fatalf("second pass = %+v calls=%d", stats, calls.Load())
	}

	clock = time.Now().Add(11 * time.Minute)
	stats = loop.ProcessPending(ctx)
	if stats.Applied != 1 {
		t.Fatalf("third pass = %+v", stats)
	}
	pending, _ := l.Pending(ctx)
	if len(pending) != 0 {
		t.Errorf("pending = %d after success", len(pending))
	}
}

func TestRetryLoop_Abandoned(t *testing.T) {
	t.Parallel()
	l := openTestLog(t)
	ctx := context.Background()
	entry, _ := l.Append(ctx, "delete_asset", map[string]string{"id": "x"})
	for i := 0; i < 3; i++ {
		_ = l.RecordFailure(ctx, entry.ID, errors.New("nope"))
	}

	var calls atomic.Int32
	loop := NewRetryLoop(l, failingDispatcher(100, &calls), config.OutboxConfig{MaxRetries: 3, EntryTTL: time.Hour})
	stats := loop.ProcessPending(ctx)
	if stats.Abandoned != 1 || calls.Load() != 0 {
		t.Fatalf("stats = %+v calls=%d", stats, calls.Load())
	}
	pending, _ := l.Pending(ctx)
	if len(pending) != 0 {
		t.Errorf("abandoned entry still pending")
	}
}

func TestRetryLoop_Expired(t *testing.T) {
	t.Parallel()
	l := openTestLog(t)
	ctx := context.Background()
	if _, err := l.Append(ctx, "notify", nil); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	loop := NewRetryLoop(l, failingDispatcher(0, &calls), config.OutboxConfig{EntryTTL: time.Minute})
	loop.now = func() time.Time { return time.Now().Add(time.Hour) }

	stats := loop.ProcessPending(ctx)
	if stats.Expired != 1 || calls.Load() != 0 {
		t.Fatalf("stats = %+v calls=%d", stats, calls.Load())
	}
}

func TestRetryLoop_SkipsClaimed(t *testing.T) {
	t.Parallel()
	l := openTestLog(t)
	ctx := context.Background()
	entry, _ := l.Append(ctx, "notify", nil)
	l.TryClaim(entry.ID)

	var calls atomic.Int32
	loop := NewRetryLoop(l, failingDispatcher(0, &calls), config.OutboxConfig{EntryTTL: time.Hour})
	loop.now = func() time.Time { return time.Now().Add(time.Minute) }

	if stats := loop.ProcessPending(ctx); stats.Skipped != 1 || calls.Load() != 0 {
		t.Errorf("stats = %+v calls=%d", stats, calls.Load())
	}
}

func TestRetryLoop_StartStop(t *testing.T) {
	t.Parallel()
	l := openTestLog(t)
	loop := NewRetryLoop(l, DispatcherFunc(func(context.Context, *Entry) error { return nil }),
		config.OutboxConfig{RetryInterval: 10 * time.Millisecond})

	if err := loop.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !loop.IsRunning() {
		t.Error("not running after Start")
	}
	if err := loop.Start(context.Background()); err != nil {
		t.Errorf("second Start: %v", err)
	}
	loop.Stop()
	if loop.IsRunning() {
		t.Error("running after Stop")
	}
	loop.Stop()
}
