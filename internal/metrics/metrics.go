// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package metrics holds the Prometheus collectors for the catalog.
//
// Collectors are registered on the default registry at init and exposed by
// the server on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Item store
	StoreLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_store_loads_total",
			Help: "Reads of the item data file by result",
		},
		[]string{"result"}, // "ok", "error", "reused"
	)

	StoreLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_store_load_duration_seconds",
			Help:    "Time to read, parse and index the item data file",
			Buckets: prometheus.DefBuckets,
		},
	)

	StoreItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_store_items",
			Help: "Number of items in the most recently loaded data file",
		},
	)

	// Stats cache
	StatsCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_stats_cache_requests_total",
			Help: "Stats reads by cache result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	StatsRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_stats_recomputes_total",
			Help: "Stats recomputations by trigger and result",
		},
		[]string{"trigger", "result"}, // trigger: "startup", "change", "demand"
	)

	StatsCacheValid = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_stats_cache_valid",
			Help: "1 when the stats cache holds a value, 0 when invalidated",
		},
	)

	// Change source
	WatchEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_watch_events_total",
			Help: "Change notifications delivered by the data file watcher",
		},
		[]string{"source"}, // "notify", "poll"
	)

	// Client circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreLoad records a data file read. reused is true when the parsed
// snapshot was still current and the file was not re-read.
func RecordStoreLoad(duration time.Duration, items int, reused bool, err error) {
	switch {
	case err != nil:
		StoreLoadsTotal.WithLabelValues("error").Inc()
	case reused:
		StoreLoadsTotal.WithLabelValues("reused").Inc()
	default:
		StoreLoadsTotal.WithLabelValues("ok").Inc()
		StoreLoadDuration.Observe(duration.Seconds())
		StoreItems.Set(float64(items))
	}
}

// RecordStatsRead records a stats cache hit or miss.
func RecordStatsRead(hit bool) {
	if hit {
		StatsCacheRequests.WithLabelValues("hit").Inc()
		return
	}
	StatsCacheRequests.WithLabelValues("miss").Inc()
}

// RecordStatsRecompute records a recompute and the resulting cache validity.
func RecordStatsRecompute(trigger string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		StatsCacheValid.Set(0)
	} else {
		StatsCacheValid.Set(1)
	}
	StatsRecomputes.WithLabelValues(trigger, result).Inc()
}

// RecordWatchEvent records a change notification.
func RecordWatchEvent(source string) {
	WatchEvents.WithLabelValues(source).Inc()
}
