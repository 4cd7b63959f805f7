// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/moviebooks/internal/models"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	checkFailed    = "unavailable"

	healthCheckTimeout = 2 * time.Second
)

// runChecks probes the database and every registered dependency.
func (h *Handler) runChecks(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"database": statusOK}
	healthy := true
	if err := h.svc.Ping(ctx); err != nil {
		checks["database"] = checkFailed
		healthy = false
	}
	for name, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			checks[name] = checkFailed
			healthy = false
			continue
		}
		checks[name] = statusOK
	}
	if h.wsHub != nil {
		checks["websocket"] = statusOK
		if !h.wsHub.IsRunning() {
			// Realtime delivery is best effort and never fails health.
			checks["websocket"] = checkFailed
		}
	}
	return checks, healthy
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Dependency checks, uptime, and per-route latency statistics over the recent request window.
// @Tags Core
// @Produce json
// @Success 200 {object} models.HealthStatus
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.runChecks(r.Context())
	status := statusOK
	if !healthy {
		status = statusDegraded
	}

	health := &models.HealthStatus{
		Status:   status,
		Version:  Version,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		Checks:   checks,
		Database: h.config.Database.Backend,
	}
	if h.perfMon != nil {
		health.Endpoints = h.perfMon.Stats()
	}
	respondJSON(w, http.StatusOK, health)
}

// HealthLive handles liveness probe requests (Kubernetes-style)
//
// @Summary Liveness probe
// @Description Returns 200 while the process is alive, regardless of dependencies.
// @Tags Core
// @Produce json
// @Success 200 {object} models.HealthStatus
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.HealthStatus{
		Status: statusOK,
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
//
// @Summary Readiness probe
// @Description Returns 200 only when the database and registered dependencies answer, 503 otherwise.
// @Tags Core
// @Produce json
// @Success 200 {object} models.HealthStatus
// @Failure 503 {object} models.HealthStatus
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.runChecks(r.Context())
	code, status := http.StatusOK, "ready"
	if !healthy {
		code, status = http.StatusServiceUnavailable, "not_ready"
	}
	respondJSON(w, code, &models.HealthStatus{Status: status, Checks: checks})
}
