// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package models

// ErrorResponse is the error envelope returned by every failing endpoint.
// Stack is populated only in development.
type ErrorResponse struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// MessageResponse is returned by delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// ReadAllResponse is returned by mark-all-as-read.
type ReadAllResponse struct {
	Message  string `json:"message"`
	Modified int64  `json:"modified"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status   string            `json:"status"`
	Version  string            `json:"version,omitempty"`
	Uptime   string            `json:"uptime,omitempty"`
	Checks   map[string]string `json:"checks,omitempty"`
	Database string            `json:"database,omitempty"`
	// Endpoints holds latency statistics for recently served routes.
	Endpoints []EndpointStats `json:"endpoints,omitempty"`
}

// EndpointStats summarizes request latencies for one route over the
// monitor's sliding window. Durations are in milliseconds.
type EndpointStats struct {
	Route        string  `json:"route"`
	RequestCount int64   `json:"requestCount"`
	AvgDuration  float64 `json:"avgMs"`
	P50Duration  int64   `json:"p50Ms"`
	P95Duration  int64   `json:"p95Ms"`
	P99Duration  int64   `json:"p99Ms"`
	MaxDuration  int64   `json:"maxMs"`
}
