// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/middleware"
	"github.com/tomtom215/moviebooks/internal/social"
	ws "github.com/tomtom215/moviebooks/internal/websocket"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// HealthChecker is an optional dependency probed by the health endpoints.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

// Check calls f.
func (f HealthCheckFunc) Check(ctx context.Context) error { return f(ctx) }

// Handler contains dependencies for API handlers
type Handler struct {
	svc       *social.Service
	config    *config.Config
	wsHub     *ws.Hub
	upgrader  *websocket.Upgrader
	perfMon   *middleware.PerformanceMonitor
	checks    map[string]HealthChecker
	startTime time.Time
}

// NewHandler creates the API handler. hub and perfMon may be nil; the
// websocket endpoint then answers 503 and health omits latency stats.
func NewHandler(cfg *config.Config, svc *social.Service, hub *ws.Hub, perfMon *middleware.PerformanceMonitor) *Handler {
	return &Handler{
		svc:       svc,
		config:    cfg,
		wsHub:     hub,
		upgrader:  ws.NewUpgrader(cfg.Security.CORSOrigins),
		perfMon:   perfMon,
		checks:    make(map[string]HealthChecker),
		startTime: time.Now(),
	}
}

// AddHealthCheck registers a named dependency check. The database check is
// always present.
func (h *Handler) AddHealthCheck(name string, c HealthChecker) {
	h.checks[name] = c
}
