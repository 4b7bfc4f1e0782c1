// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package metrics defines the Prometheus instrumentation for Vietmap.
//
// Collectors register on the default registry through promauto and are
// served by promhttp at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream fetch metrics, one series per race attempt ("direct", "proxy-1", ...).
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vietmap_fetch_attempts_total",
			Help: "Total number of upstream fetch attempts by strategy and result",
		},
		[]string{"strategy", "result"}, // result: "success", "not_found", "failure", "cancelled"
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vietmap_fetch_duration_seconds",
			Help:    "Duration of a full fetch race per endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"endpoint"},
	)

	FetchWinner = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vietmap_fetch_winner_total",
			Help: "Number of races won per strategy",
		},
		[]string{"strategy"},
	)

	FetchExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vietmap_fetch_exhausted_total",
			Help: "Races where every strategy failed",
		},
		[]string{"endpoint"},
	)

	SnapshotServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vietmap_snapshot_served_total",
			Help: "Last-known-good snapshots served after a failed race",
		},
		[]string{"endpoint"},
	)

	// Reference data store metrics
	RefdataLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vietmap_refdata_load_duration_seconds",
			Help:    "Duration of reference data loads",
			Buckets: prometheus.DefBuckets,
		},
	)

	RefdataRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vietmap_refdata_records",
			Help: "Records held by the reference data store per collection",
		},
		[]string{"collection"},
	)

	RefdataLastLoad = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vietmap_refdata_last_load_timestamp_seconds",
			Help: "Unix time of the last completed reference data load",
		},
	)

	// Catalog metrics
	CatalogEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vietmap_catalog_entities",
			Help: "Entities returned by the last catalog fetch",
		},
		[]string{"kind"}, // "sites", "persons"
	)

	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vietmap_catalog_refreshes_total",
			Help: "Catalog refresh runs by trigger",
		},
		[]string{"trigger"}, // "startup", "interval", "admin"
	)

	PersonsLocated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vietmap_persons_located_total",
			Help: "Person location resolutions by outcome",
		},
		[]string{"source"}, // "text", "city", "none"
	)

	// Directions and geocoding
	DirectionsFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vietmap_directions_fallbacks_total",
			Help: "Routes answered with the straight-line fallback",
		},
	)

	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vietmap_geocode_requests_total",
			Help: "Geocoder requests by operation and result",
		},
		[]string{"operation", "result"},
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

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "sites", "persons", "geocode"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
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

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Supervisor Metrics
	ServiceRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vietmap_service_restarts_total",
			Help: "Supervised service terminations that led to a restart",
		},
		[]string{"layer", "service", "cause"}, // cause: "error", "panic"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordFetchAttempt records the outcome of one race attempt.
func RecordFetchAttempt(strategy, result string) {
	FetchAttempts.WithLabelValues(strategy, result).Inc()
}

// RecordFetchRace records a finished race. winner is "" when every attempt failed.
func RecordFetchRace(endpoint, winner string, duration time.Duration) {
	FetchDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if winner == "" {
		FetchExhausted.WithLabelValues(endpoint).Inc()
		return
	}
	FetchWinner.WithLabelValues(winner).Inc()
}

// RecordRefdataLoad records a completed reference data load.
func RecordRefdataLoad(duration time.Duration, counts map[string]int) {
	RefdataLoadDuration.Observe(duration.Seconds())
	for collection, n := range counts {
		RefdataRecords.WithLabelValues(collection).Set(float64(n))
	}
	RefdataLastLoad.Set(float64(time.Now().Unix()))
}

// RecordCacheLookup counts a hit or a miss for the named cache.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordBreakerResult counts a request passing through a circuit breaker.
func RecordBreakerResult(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordBreakerTransition updates breaker state gauges on a transition.
func RecordBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordServiceRestart counts a supervised service being restarted.
func RecordServiceRestart(layer, service, cause string) {
	ServiceRestarts.WithLabelValues(layer, service, cause).Inc()
}

// StatusLabel formats an HTTP status code as a metric label.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
