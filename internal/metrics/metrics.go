// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package metrics

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Product store queries (DuckDB / PostgreSQL)
// - Upstream API calls, rate-limit waits and 429 retries
// - Pipeline runs and per-source outcomes
// - Capacity state, eviction and rotation
// - Feed API latency and diversity

var (
	// Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of product store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of product store query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Metrics
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
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of API requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Upstream Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of item-search API calls",
		},
		[]string{"source", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of item-search API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	RateLimitWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rate_limit_wait_seconds",
			Help:    "Time spent waiting for the shared call budget",
			Buckets: []float64{0, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
	)

	RateLimitRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_retries_total",
			Help: "Total number of retries after HTTP 429 responses",
		},
		[]string{"source"},
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

	// Pipeline Metrics
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of pipeline runs by result",
		},
		[]string{"result"}, // "success", "partial", "error"
	)

	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_failures_total",
			Help: "Total number of aborted source ingestions by error category",
		},
		[]string{"source", "category"},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	ProductsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_fetched_total",
			Help: "Total number of raw items fetched per source",
		},
		[]string{"source"},
	)

	ProductsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_saved_total",
			Help: "Total number of products written per source and outcome",
		},
		[]string{"source", "outcome"}, // "inserted", "updated", "skipped"
	)

	ProductsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_dropped_total",
			Help: "Total number of raw items dropped during normalization",
		},
		[]string{"reason"},
	)

	DedupMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_matches_total",
			Help: "Total number of items resolved as duplicates",
		},
		[]string{"kind"}, // "id", "title", "batch"
	)

	// Capacity Metrics
	CatalogProducts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Number of stored products",
		},
		[]string{"state"}, // "active", "inactive"
	)

	CapacityUtilization = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "capacity_utilization_ratio",
			Help: "Stored products divided by the configured maximum",
		},
	)

	CapacityState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "capacity_state",
			Help: "Capacity state (0=normal, 1=warning, 2=critical)",
		},
	)

	ProductsEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_evicted_total",
			Help: "Total number of products deleted by capacity eviction",
		},
		[]string{"tier"},
	)

	// Rotation Metrics
	RotationChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotation_changes_total",
			Help: "Total number of products activated or deactivated by rotation",
		},
		[]string{"source", "direction"}, // direction: "activated", "deactivated"
	)

	// Feed Metrics
	FeedsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feeds_served_total",
			Help: "Total number of diversified feeds served",
		},
		[]string{"personalized"},
	)

	FeedDiversityScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_diversity_score",
			Help:    "Diversity score of served feeds (0-1)",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	FeedCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cache_hits_total",
			Help: "Total number of feed candidate cache hits",
		},
	)

	FeedCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cache_misses_total",
			Help: "Total number of feed candidate cache misses (store query required)",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// maxErrorLabel bounds error text used as a label value.
const maxErrorLabel = 50

// RecordDBQuery records a store query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > maxErrorLabel {
			errorType = errorType[:maxErrorLabel]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
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

// RecordUpstreamRequest records one item-search call. status 0 means no response.
func RecordUpstreamRequest(source string, status int, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(source, strconv.Itoa(status)).Inc()
	UpstreamRequestDuration.Observe(duration.Seconds())
}

// RecordRateLimitWait records time spent blocked on the call budget.
func RecordRateLimitWait(wait time.Duration) {
	RateLimitWaitSeconds.Observe(wait.Seconds())
}

// RecordRateLimitRetry counts a retry after HTTP 429.
func RecordRateLimitRetry(source string) {
	RateLimitRetries.WithLabelValues(source).Inc()
}

// RecordSyncRun records a pipeline run. failures is the number of sources that
// failed; a run with some failed sources is "partial".
func RecordSyncRun(duration time.Duration, failures int, err error) {
	SyncDuration.Observe(duration.Seconds())
	switch {
	case err != nil:
		SyncRunsTotal.WithLabelValues("error").Inc()
	case failures > 0:
		SyncRunsTotal.WithLabelValues("partial").Inc()
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	default:
		SyncRunsTotal.WithLabelValues("success").Inc()
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordSourceOutcome records per-source fetch and save counts.
func RecordSourceOutcome(source string, fetched, inserted, updated, skipped int) {
	ProductsFetched.WithLabelValues(source).Add(float64(fetched))
	ProductsSaved.WithLabelValues(source, "inserted").Add(float64(inserted))
	ProductsSaved.WithLabelValues(source, "updated").Add(float64(updated))
	ProductsSaved.WithLabelValues(source, "skipped").Add(float64(skipped))
}

// RecordDropped counts a raw item dropped for reason.
func RecordDropped(reason string) {
	ProductsDropped.WithLabelValues(reason).Inc()
}

// RecordDedup counts a duplicate resolution.
func RecordDedup(kind string) {
	DedupMatches.WithLabelValues(kind).Inc()
}

// UpdateCapacity publishes the latest capacity assessment.
func UpdateCapacity(total, active int, utilization float64, state int) {
	CatalogProducts.WithLabelValues("active").Set(float64(active))
	CatalogProducts.WithLabelValues("inactive").Set(float64(total - active))
	CapacityUtilization.Set(utilization)
	CapacityState.Set(float64(state))
}

// RecordEviction counts products deleted by an eviction tier.
func RecordEviction(tier string, deleted int) {
	if deleted > 0 {
		ProductsEvicted.WithLabelValues(tier).Add(float64(deleted))
	}
}

// RecordRotation counts rotation changes for a source.
func RecordRotation(source string, activated, deactivated int) {
	RotationChanges.WithLabelValues(source, "activated").Add(float64(activated))
	RotationChanges.WithLabelValues(source, "deactivated").Add(float64(deactivated))
}

// RecordFeed records a served feed.
func RecordFeed(diversity float64, personalized bool) {
	FeedsServed.WithLabelValues(strconv.FormatBool(personalized)).Inc()
	FeedDiversityScore.Observe(diversity)
}

// RecordSourceFailure counts an aborted source ingestion.
func RecordSourceFailure(source string, err error) {
	SourceFailures.WithLabelValues(source, ErrorCategory(err)).Inc()
}

// ErrorCategory buckets an error for low-cardinality labels.
func ErrorCategory(err error) string {
	if err == nil {
		return "none"
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return "rate_limit"
	case strings.Contains(msg, "circuit breaker"):
		return "circuit_open"
	case strings.Contains(msg, "upstream"):
		return "upstream"
	case strings.Contains(msg, "store") || strings.Contains(msg, "database"):
		return "store"
	default:
		return "other"
	}
}
