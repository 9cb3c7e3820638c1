// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package metrics provides Prometheus metrics for the catalog pipeline and API.

All collectors are registered with the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

Upstream:
  - upstream_requests_total{source,status_code}
  - upstream_request_duration_seconds
  - rate_limit_wait_seconds: time blocked on the shared call budget
  - rate_limit_retries_total{source}: retries after HTTP 429
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}

Pipeline:
  - sync_runs_total{result}: success, partial or error
  - source_failures_total{source,category}: aborted source ingestions
  - sync_duration_seconds, sync_last_success_timestamp
  - products_fetched_total{source}, products_saved_total{source,outcome}
  - products_dropped_total{reason}, dedup_matches_total{kind}

Capacity and rotation:
  - catalog_products{state}, capacity_utilization_ratio, capacity_state
  - products_evicted_total{tier}
  - rotation_changes_total{source,direction}

API and store:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - feeds_served_total{personalized}, feed_diversity_score
  - store_query_duration_seconds{operation,table}, store_query_errors_total

# Label Cardinality

Error labels are truncated to 50 characters (RecordDBQuery) or bucketed with
ErrorCategory. Source labels come from the configured source table and are
bounded by it.
*/
package metrics
