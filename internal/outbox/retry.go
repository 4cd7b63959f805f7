// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/metrics"
)

// RetryLoop periodically re-executes pending effects.
//
// Backoff is linear: an entry with n failed attempts waits n*RetryBackoff
// after its last attempt (RetryBackoff after creation when n is zero).
// Entries older than EntryTTL or with MaxRetries failed attempts are
// dropped and counted as expired or abandoned.
type RetryLoop struct {
	log        Log
	dispatcher Dispatcher
	cfg        config.OutboxConfig
	now        func() time.Time

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	stopDone chan struct{}
}

// RetryStats summarizes one pass over the pending entries.
type RetryStats struct {
	Pending   int
	Applied   int
	Failed    int
	Expired   int
	Abandoned int
	Skipped   int
}

// NewRetryLoop creates a retry loop over log.
func NewRetryLoop(log Log, d Dispatcher, cfg config.OutboxConfig) *RetryLoop {
	return &RetryLoop{
		log:        log,
		dispatcher: d,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Start launches the loop in the background. Calling Start on a running
// loop is a no-op.
func (r *RetryLoop) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.stopDone = make(chan struct{})

	go r.run(loopCtx, r.stopDone)

	logging.Info().
		Dur("interval", r.cfg.RetryInterval).
		Int("max_retries", r.cfg.MaxRetries).
		Msg("Outbox retry loop started")
	return nil
}

// Stop cancels the loop and waits for the current pass to finish.
func (r *RetryLoop) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.running = false
	done := r.stopDone
	r.mu.Unlock()

	<-done
	logging.Info().Msg("Outbox retry loop stopped")
}

// IsRunning reports whether the loop is active.
func (r *RetryLoop) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *RetryLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Recover entries left pending by a previous process right away.
	r.ProcessPending(ctx)

	interval := r.cfg.RetryInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.ProcessPending(ctx)
		}
	}
}

// ProcessPending makes one pass over the pending entries.
func (r *RetryLoop) ProcessPending(ctx context.Context) RetryStats {
	var stats RetryStats

	entries, err := r.log.Pending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Outbox retry: failed to list pending entries")
		return stats
	}
	stats.Pending = len(entries)
	metrics.OutboxPending.Set(float64(len(entries)))

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		switch r.process(ctx, entry) {
		case resultApplied:
			stats.Applied++
		case resultFailed:
			stats.Failed++
		case resultExpired:
			stats.Expired++
		case resultAbandoned:
			stats.Abandoned++
		case resultSkipped:
			stats.Skipped++
		}
	}

	if stats.Applied+stats.Failed+stats.Expired+stats.Abandoned > 0 {
		logging.Info().
			Int("applied", stats.Applied).
			Int("failed", stats.Failed).
			Int("expired", stats.Expired).
			Int("abandoned", stats.Abandoned).
			Msg("Outbox retry pass complete")
	}
	return stats
}

type retryResult int

const (
	resultApplied retryResult = iota
	resultFailed
	resultExpired
	resultAbandoned
	resultSkipped
)

func (r *RetryLoop) process(ctx context.Context, entry *Entry) retryResult {
	if !r.log.TryClaim(entry.ID) {
		return resultSkipped
	}
	defer r.log.Release(entry.ID)

	now := r.now()

	if r.cfg.EntryTTL > 0 && now.Sub(entry.CreatedAt) > r.cfg.EntryTTL {
		r.drop(ctx, entry, "expired")
		return resultExpired
	}
	if r.cfg.MaxRetries > 0 && entry.Attempts >= r.cfg.MaxRetries {
		r.drop(ctx, entry, "abandoned")
		return resultAbandoned
	}
	if !r.ready(entry, now) {
		return resultSkipped
	}

	applyCtx, cancel := context.WithTimeout(ctx, inlineTimeout)
	err := r.dispatcher.Apply(applyCtx, entry)
	cancel()

	if err != nil {
		logging.Warn().
			Err(err).
			Str("entry_id", entry.ID).
			Str("kind", entry.Kind).
			Int("attempt", entry.Attempts+1).
			Msg("Outbox retry: effect failed")
		if ferr := r.log.RecordFailure(ctx, entry.ID, err); ferr != nil {
			logging.Error().Err(ferr).Str("entry_id", entry.ID).Msg("Outbox retry: failed to record attempt")
		}
		metrics.RecordEffect(entry.Kind, "failed")
		return resultFailed
	}

	if err := r.log.Confirm(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("Outbox retry: failed to confirm entry")
		return resultFailed
	}
	metrics.RecordEffect(entry.Kind, "applied")
	return resultApplied
}

func (r *RetryLoop) drop(ctx context.Context, entry *Entry, result string) {
	logging.Warn().
		Str("entry_id", entry.ID).
		Str("kind", entry.Kind).
		Int("attempts", entry.Attempts).
		Str("last_error", entry.LastError).
		Msgf("Outbox retry: dropping %s entry", result)
	if err := r.log.Delete(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("Outbox retry: failed to delete entry")
	}
	metrics.RecordEffect(entry.Kind, result)
}

// ready reports whether the entry's backoff has elapsed.
func (r *RetryLoop) ready(entry *Entry, now time.Time) bool {
	return now.Sub(lastTouched(entry)) >= Backoff(r.cfg.RetryBackoff, entry.Attempts)
}

func lastTouched(e *Entry) time.Time {
	if e.LastAttemptAt.IsZero() {
		return e.CreatedAt
	}
	return e.LastAttemptAt
}

// Backoff returns the linear delay before the next attempt.
func Backoff(base time.Duration, attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return base * time.Duration(attempts)
}
