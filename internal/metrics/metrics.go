// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

// Package metrics holds the Prometheus collectors for MapAdmin.
//
// Collectors are registered on the default registry through promauto and
// exposed at /metrics by the API router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Primary config store (DuckDB)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of tracked admin WebSocket connections",
		},
	)

	WSFramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_frames_received_total",
			Help: "Inbound WebSocket frames by message type",
		},
		[]string{"type"},
	)

	WSFramesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_frames_sent_total",
			Help: "Outbound WebSocket frames queued by message type",
		},
		[]string{"type"},
	)

	WSFramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_frames_dropped_total",
			Help: "Outbound WebSocket frames dropped because the connection was closed or full",
		},
		[]string{"type"},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket protocol and handler errors",
		},
		[]string{"error_type"}, // parse, missing_type, unsupported_type, invalid_payload, rate_limited, panic, handler
	)

	// Presence Metrics
	PresenceClaims = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_claims",
			Help: "Current number of active admin presence claims",
		},
	)

	// Search Metrics
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_autocomplete_duration_seconds",
			Help:    "Duration of similarity search executions against the GIS store",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_autocomplete_requests_total",
			Help: "Similarity search requests by outcome",
		},
		[]string{"result"}, // success, unavailable, bad_request, error
	)

	SearchSources = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_autocomplete_sources",
			Help:    "Number of sources per similarity search request",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	ResourceCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_cache_lookups_total",
			Help: "Config store lookups served by the resource cache, by cache and result (hit, miss)",
		},
		[]string{"cache", "result"},
	)

	StoreUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_up",
			Help: "1 if the store answered its last health ping, 0 otherwise",
		},
		[]string{"store"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records one primary store query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
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

// RecordSearch records one autocomplete outcome and, when it reached the
// database, its execution time.
func RecordSearch(result string, duration time.Duration) {
	SearchRequests.WithLabelValues(result).Inc()
	if duration > 0 {
		SearchDuration.Observe(duration.Seconds())
	}
}
