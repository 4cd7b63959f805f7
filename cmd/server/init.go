// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/database/memdb"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/outbox"
)

// openStore connects the document store selected by DATABASE_BACKEND. The
// returned close function is never nil.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, func(context.Context) error, error) {
	switch cfg.Backend {
	case config.DatabaseMemory:
		logging.Warn().Msg("Using the in-memory store: all data is lost on restart")
		return memdb.New(), func(context.Context) error { return nil }, nil
	case "", config.DatabaseMongo:
		store, err := database.NewMongoStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown database backend %q", cfg.Backend)
	}
}

// openOutbox opens the side-effect log, or returns a nil Log when the outbox
// is disabled so effects run once without a record.
func openOutbox(cfg config.OutboxConfig) (outbox.Log, *outbox.BadgerLog, error) {
	if !cfg.Enabled {
		logging.Warn().Msg("Outbox disabled: failed cleanups and notifications will not be retried")
		return nil, nil, nil
	}
	log, err := outbox.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open outbox: %w", err)
	}
	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Outbox opened")
	return log, log, nil
}
