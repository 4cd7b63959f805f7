// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package outbox

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/metrics"
)

// inlineTimeout bounds an effect executed on the request path.
const inlineTimeout = 15 * time.Second

// Dispatcher executes a recorded effect. Implementations switch on Entry.Kind.
type Dispatcher interface {
	Apply(ctx context.Context, e *Entry) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, e *Entry) error

func (f DispatcherFunc) Apply(ctx context.Context, e *Entry) error {
	return f(ctx, e)
}

// Runner records effects and executes them immediately.
type Runner struct {
	log        Log
	dispatcher Dispatcher
}

// NewRunner returns a Runner. A nil log executes effects without recording
// them, so failures are logged but never retried.
func NewRunner(log Log, d Dispatcher) *Runner {
	return &Runner{log: log, dispatcher: d}
}

// Run records the effect and executes it. The effect runs detached from
// ctx cancellation so a client disconnect does not abort it. A failure is
// logged and left pending for the retry loop; the error is returned for
// callers that want it but is never meant to fail the primary operation.
func (r *Runner) Run(ctx context.Context, kind string, payload any) error {
	log := logging.Ctx(ctx).With().Str("component", "effects").Str("kind", kind).Logger()

	execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), inlineTimeout)
	defer cancel()

	entry, recorded, err := r.record(ctx, kind, payload)
	if err != nil {
		metrics.RecordEffect(kind, "failed")
		log.Error().Err(err).Msg("Failed to record side effect")
		return err
	}

	if recorded {
		if !r.log.TryClaim(entry.ID) {
			return nil
		}
		defer r.log.Release(entry.ID)
	}

	if err := r.dispatcher.Apply(execCtx, entry); err != nil {
		metrics.RecordEffect(kind, "failed")
		ev := log.Warn().Err(err).Str("entry_id", entry.ID)
		if recorded {
			if ferr := r.log.RecordFailure(execCtx, entry.ID, err); ferr != nil {
				ev = ev.AnErr("record_error", ferr)
			}
			ev.Msg("Side effect failed, left pending for retry")
		} else {
			ev.Msg("Side effect failed")
		}
		return err
	}

	metrics.RecordEffect(kind, "applied")
	if recorded {
		if cerr := r.log.Confirm(execCtx, entry.ID); cerr != nil {
			log.Warn().Err(cerr).Str("entry_id", entry.ID).Msg("Failed to confirm side effect")
		}
	}
	return nil
}

// record appends the effect to the log. When there is no log, or the log
// rejects the write, it returns a transient entry so the effect still runs.
func (r *Runner) record(ctx context.Context, kind string, payload any) (*Entry, bool, error) {
	if kind == "" {
		return nil, false, ErrEmptyKind
	}
	if r.log != nil {
		entry, err := r.log.Append(ctx, kind, payload)
		if err == nil {
			return entry, true, nil
		}
		logging.Ctx(ctx).Warn().Err(err).Str("kind", kind).Msg("Outbox append failed, running effect unrecorded")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false, err
	}
	return &Entry{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, false, nil
}
