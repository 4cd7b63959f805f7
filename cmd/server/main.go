// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/moviebooks/docs" // Import generated swagger docs
	"github.com/tomtom215/moviebooks/internal/api"
	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/authz"
	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/events"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/middleware"
	"github.com/tomtom215/moviebooks/internal/outbox"
	"github.com/tomtom215/moviebooks/internal/social"
	"github.com/tomtom215/moviebooks/internal/supervisor"
	"github.com/tomtom215/moviebooks/internal/supervisor/services"
	ws "github.com/tomtom215/moviebooks/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

//nolint:gocyclo // sequential setup steps
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Caller:      cfg.Logging.Caller,
		Environment: cfg.Server.Environment,
		Output:      os.Stderr,
	})

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Str("database", cfg.Database.Backend).
		Str("media", cfg.Media.Backend).
		Str("events", cfg.Events.Backend).
		Msg("Starting MovieBooks")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := openStore(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer func() {
		closeCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := closeStore(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()

	images, err := media.New(cfg.Media)
	if err != nil {
		return fmt.Errorf("open media store: %w", err)
	}

	enforcer, err := authz.New(cfg.Authz)
	if err != nil {
		return fmt.Errorf("initialize authorization: %w", err)
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize JWT manager: %w", err)
	}

	effects, badgerLog, err := openOutbox(cfg.Outbox)
	if err != nil {
		return err
	}
	if badgerLog != nil {
		defer func() {
			if err := badgerLog.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing outbox")
			}
		}()
	}

	bus, err := events.New(cfg.Events)
	if err != nil {
		return fmt.Errorf("initialize event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	svc, err := social.New(cfg, social.Deps{
		Store:  store,
		Media:  images,
		Authz:  enforcer,
		JWT:    jwtManager,
		Outbox: effects,
		Events: bus,
	})
	if err != nil {
		return fmt.Errorf("initialize service: %w", err)
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.Server.IsDevelopment() {
		logging.Warn().Msg("Development mode: error responses include stacks")
	}

	hub := ws.NewHub()
	perfMon := middleware.NewPerformanceMonitor(0, 0)
	handler := api.NewHandler(cfg, svc, hub, perfMon)
	if checker, ok := images.(api.HealthChecker); ok {
		handler.AddHealthCheck("media", checker)
	}
	router := api.NewRouter(handler, jwtManager)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if effects != nil {
		loop := outbox.NewRetryLoop(effects, svc.Dispatcher(), cfg.Outbox)
		tree.AddDataService(services.NewOutboxRetryLoopService(loop))
	}
	for _, c := range svc.Caches() {
		tree.AddDataService(c)
	}
	tree.AddMessagingService(hub)
	tree.AddMessagingService(events.NewForwarder(bus, hub))
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	<-ctx.Done()
	logging.Info().Msg("Shutdown signal received")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		}
	case <-time.After(2 * shutdownTimeout):
		logging.Warn().Msg("Supervisor tree did not stop in time")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, s := range report {
			logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("MovieBooks stopped")
	return nil
}
