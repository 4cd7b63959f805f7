// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// Package outbox is a durable log of side effects backed by BadgerDB.
//
// A side effect (a notification insert, a favorites sync, a cascade delete)
// is appended to the log before it runs. Successful effects are confirmed;
// failed ones stay pending and are retried by RetryLoop until they succeed,
// exceed MaxRetries, or outlive EntryTTL. Effects must be idempotent since
// a crash between execution and confirmation replays them.
//
// Key layout:
//
//	pending:<id>    entry awaiting execution or retry (TTL = EntryTTL)
//	confirmed:<id>  executed entry kept briefly for inspection (TTL = 1h)
package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/metrics"
)

const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"

	confirmedTTL = time.Hour
)

var (
	ErrClosed        = errors.New("outbox is closed")
	ErrEmptyKind     = errors.New("effect kind cannot be empty")
	ErrEntryNotFound = errors.New("outbox entry not found")
)

// Entry is one recorded side effect.
type Entry struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt time.Time       `json:"last_attempt_at,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
}

// UnmarshalPayload decodes the payload into v.
func (e *Entry) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Log records side effects.
type Log interface {
	Append(ctx context.Context, kind string, payload any) (*Entry, error)
	Confirm(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id string, cause error) error
	Pending(ctx context.Context) ([]*Entry, error)
	Delete(ctx context.Context, id string) error

	// TryClaim reserves an entry for in-process execution so the inline
	// runner and the retry loop never execute the same entry concurrently.
	TryClaim(id string) bool
	Release(id string)

	Close() error
}

// BadgerLog implements Log on BadgerDB.
type BadgerLog struct {
	db  *badger.DB
	cfg config.OutboxConfig

	mu     sync.RWMutex
	closed bool

	claims sync.Map
}

var _ Log = (*BadgerLog)(nil)

// Open opens (or creates) the log at cfg.Path, or in memory when cfg.InMemory is set.
func Open(cfg config.OutboxConfig) (*BadgerLog, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Outbox opened")

	return &BadgerLog{db: db, cfg: cfg}, nil
}

func (l *BadgerLog) checkOpen() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	return nil
}

// Append records a new pending effect.
func (l *BadgerLog) Append(_ context.Context, kind string, payload any) (*Entry, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	if kind == "" {
		return nil, ErrEmptyKind
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	entry := &Entry{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.db.Update(func(txn *badger.Txn) error {
		return l.put(txn, entry)
	}); err != nil {
		return nil, fmt.Errorf("write entry: %w", err)
	}

	metrics.OutboxPending.Inc()
	return entry, nil
}

// put writes a pending entry with whatever remains of its TTL.
func (l *BadgerLog) put(txn *badger.Txn, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	e := badger.NewEntry([]byte(prefixPending+entry.ID), data)
	if l.cfg.EntryTTL > 0 {
		remaining := l.cfg.EntryTTL - time.Since(entry.CreatedAt)
		if remaining < time.Second {
			remaining = time.Second
		}
		e = e.WithTTL(remaining)
	}
	return txn.SetEntry(e)
}

func (l *BadgerLog) get(txn *badger.Txn, id string) (*Entry, error) {
	item, err := txn.Get([]byte(prefixPending + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	var entry Entry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, nil
}

// Confirm moves an entry from pending to confirmed.
func (l *BadgerLog) Confirm(_ context.Context, id string) error {
	if err := l.checkOpen(); err != nil {
		return err
	}

	err := l.db.Update(func(txn *badger.Txn) error {
		entry, err := l.get(txn, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		entry.ConfirmedAt = &now

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal confirmed entry: %w", err)
		}
		if err := txn.SetEntry(badger.NewEntry([]byte(prefixConfirmed+id), data).WithTTL(confirmedTTL)); err != nil {
			return fmt.Errorf("set confirmed entry: %w", err)
		}
		return txn.Delete([]byte(prefixPending + id))
	})
	if err != nil {
		return err
	}

	metrics.OutboxPending.Dec()
	return nil
}

// RecordFailure bumps the attempt count and stores the error message.
func (l *BadgerLog) RecordFailure(_ context.Context, id string, cause error) error {
	if err := l.checkOpen(); err != nil {
		return err
	}

	return l.db.Update(func(txn *badger.Txn) error {
		entry, err := l.get(txn, id)
		if err != nil {
			return err
		}
		entry.Attempts++
		entry.LastAttemptAt = time.Now().UTC()
		if cause != nil {
			entry.LastError = cause.Error()
		}
		return l.put(txn, entry)
	})
}

// Pending returns every unconfirmed entry, oldest key first.
func (l *BadgerLog) Pending(ctx context.Context) ([]*Entry, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Outbox skipped unreadable entry")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return entries, nil
}

// Delete drops a pending entry without confirming it.
func (l *BadgerLog) Delete(_ context.Context, id string) error {
	if err := l.checkOpen(); err != nil {
		return err
	}

	err := l.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixPending + id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}
	metrics.OutboxPending.Dec()
	return nil
}

func (l *BadgerLog) TryClaim(id string) bool {
	_, loaded := l.claims.LoadOrStore(id, time.Now())
	return !loaded
}

func (l *BadgerLog) Release(id string) {
	l.claims.Delete(id)
}

// IsConfirmed reports whether id was confirmed within the last hour.
func (l *BadgerLog) IsConfirmed(id string) bool {
	err := l.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(prefixConfirmed + id))
		return err
	})
	return err == nil
}

// Close closes the underlying database.
func (l *BadgerLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
