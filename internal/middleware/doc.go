// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

/*
Package middleware provides the HTTP middleware shared by the API router.

All middleware uses the standard func(http.Handler) http.Handler shape so it
can be mounted with chi's r.Use or r.With.

Key Components:

  - RequestID: request ID propagation into the response header and the
    logging context
  - Metrics: Prometheus request counters and latency histograms labelled by
    chi route pattern
  - Compression: gzip responses for clients that accept it
  - PerformanceMonitor: sliding window latency percentiles reported by the
    health endpoint, plus slow request logging
  - QueryTimeout: bounds the database work of a request with a deadline

Typical stack:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(perfMon.Middleware)
	r.Use(middleware.QueryTimeout(cfg.Database.QueryTimeout))
*/
package middleware
