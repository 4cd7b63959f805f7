// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/models"
)

// DefaultSlowRequestThreshold is used when NewPerformanceMonitor gets zero.
const DefaultSlowRequestThreshold = time.Second

// requestSample is one served request inside the sliding window.
type requestSample struct {
	route      string
	durationMS int64
}

// PerformanceMonitor keeps the latencies of the last maxSamples requests
// and logs requests slower than the threshold.
type PerformanceMonitor struct {
	mu         sync.RWMutex
	samples    []requestSample
	maxSamples int
	slow       time.Duration
}

// NewPerformanceMonitor creates a monitor holding up to maxSamples requests.
func NewPerformanceMonitor(maxSamples int, slow time.Duration) *PerformanceMonitor {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	if slow <= 0 {
		slow = DefaultSlowRequestThreshold
	}
	return &PerformanceMonitor{
		samples:    make([]requestSample, 0, maxSamples),
		maxSamples: maxSamples,
		slow:       slow,
	}
}

// Record adds a sample, evicting the oldest when the window is full.
func (pm *PerformanceMonitor) Record(route string, d time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.samples = append(pm.samples, requestSample{route: route, durationMS: d.Milliseconds()})
	if len(pm.samples) > pm.maxSamples {
		pm.samples = pm.samples[1:]
	}
}

// Stats aggregates the window per route, busiest first.
func (pm *PerformanceMonitor) Stats() []models.EndpointStats {
	pm.mu.RLock()
	byRoute := make(map[string][]int64)
	for _, s := range pm.samples {
		byRoute[s.route] = append(byRoute[s.route], s.durationMS)
	}
	pm.mu.RUnlock()

	stats := make([]models.EndpointStats, 0, len(byRoute))
	for route, durations := range byRoute {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		var sum int64
		for _, d := range durations {
			sum += d
		}
		stats = append(stats, models.EndpointStats{
			Route:        route,
			RequestCount: int64(len(durations)),
			AvgDuration:  float64(sum) / float64(len(durations)),
			P50Duration:  percentile(durations, 0.50),
			P95Duration:  percentile(durations, 0.95),
			P99Duration:  percentile(durations, 0.99),
			MaxDuration:  durations[len(durations)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Route < stats[j].Route
	})
	return stats
}

// Middleware records the latency of every request it wraps.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.Method + " " + routePattern(r)
		pm.Record(route, elapsed)

		if elapsed > pm.slow {
			logging.Ctx(r.Context()).Warn().
				Str("route", route).
				Int("status", rec.statusCode).
				Int64("duration_ms", elapsed.Milliseconds()).
				Msg("Slow request detected")
		}
	})
}

// percentile reads p from an ascending slice.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
