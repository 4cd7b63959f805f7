// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// Package metrics holds the Prometheus collectors for MovieBooks.
//
// Collectors are registered on the default registry through promauto and
// exposed by the API at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviebooks_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviebooks_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Database Metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviebooks_db_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	DBOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_db_operation_errors_total",
			Help: "Total number of failed document store operations",
		},
		[]string{"operation", "collection"},
	)

	// Side-effect outbox
	OutboxEffectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_outbox_effects_total",
			Help: "Side effects processed by kind and result (applied, failed, expired, abandoned)",
		},
		[]string{"kind", "result"},
	)

	OutboxPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviebooks_outbox_pending",
			Help: "Side effects waiting for retry",
		},
	)

	// Events
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_events_published_total",
			Help: "Events published to the bus by topic and result",
		},
		[]string{"topic", "result"},
	)

	// WebSocket
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviebooks_websocket_connections",
			Help: "Open notification WebSocket connections",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviebooks_websocket_messages_sent_total",
			Help: "Messages delivered to WebSocket clients",
		},
	)

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_cache_hits_total",
			Help: "Read cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_cache_misses_total",
			Help: "Read cache misses by cache name",
		},
		[]string{"cache"},
	)

	// Media / circuit breaker
	MediaOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_media_operations_total",
			Help: "Image store operations by backend, operation, and result",
		},
		[]string{"backend", "operation", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moviebooks_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_circuit_breaker_requests_total",
			Help: "Calls through a circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Domain counters
	DomainEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebooks_domain_events_total",
			Help: "Domain actions by type (connection_created, like, favorite, comment, follow, ...)",
		},
		[]string{"action"},
	)
)

// RecordDBOperation records a document store operation.
func RecordDBOperation(operation, collection string, duration time.Duration, err error) {
	DBOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		DBOperationErrors.WithLabelValues(operation, collection).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEffect records the outcome of a side effect.
func RecordEffect(kind, result string) {
	OutboxEffectsTotal.WithLabelValues(kind, result).Inc()
}

// RecordPublish records an event bus publish.
func RecordPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsPublishedTotal.WithLabelValues(topic, result).Inc()
}

// RecordMediaOperation records an image store call; result is success, failure, or rejected.
func RecordMediaOperation(backend, operation, result string) {
	MediaOperationsTotal.WithLabelValues(backend, operation, result).Inc()
}

// RecordDomainEvent counts a user-visible domain action.
func RecordDomainEvent(action string) {
	DomainEventsTotal.WithLabelValues(action).Inc()
}
