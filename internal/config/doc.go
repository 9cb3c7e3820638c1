// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package config provides centralized configuration management for Atelier.

Configuration is layered with koanf:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, ./config.yaml or /etc/atelier/config.yaml)
 3. Environment variables (highest priority)

The source table (brands and keyword queries with their priority tiers, volume
limits and rotation periods) is part of the same document under "sources:". It can
also be supplied as a separate YAML file through SOURCES_FILE, which replaces the
table wholesale.

# Environment Variables

Upstream API:
  - RAKUTEN_APPLICATION_ID: API application id (required when SYNC_ENABLED=true)
  - RAKUTEN_AFFILIATE_ID: affiliate id appended to requests
  - RAKUTEN_BASE_URL, RAKUTEN_GENRE_ID, RAKUTEN_HITS, RAKUTEN_MIN_PRICE, RAKUTEN_TIMEOUT

Rate limiting:
  - RATE_LIMIT_STRATEGY: fixed (default) or token
  - RATE_LIMIT_CALLS / RATE_LIMIT_WINDOW: call budget (default 30 per 1m)
  - RATE_LIMIT_MAX_RETRIES, RATE_LIMIT_BASE_DELAY, RATE_LIMIT_MAX_DELAY: 429 retry policy

Capacity:
  - CAPACITY_MAX_PRODUCTS (default 40000)
  - CAPACITY_WARNING_RATIO / CAPACITY_CRITICAL_RATIO (default 0.6 / 0.8)
  - CAPACITY_CRITICAL_COUNT: absolute critical threshold (default 38000)
  - CAPACITY_TARGET_RATIO: eviction target (default 0.7)

Sync:
  - SYNC_ENABLED, SYNC_INTERVAL (default 6h), SYNC_RUN_ON_STARTUP
  - SYNC_MODE: mvp, extended or test
  - SYNC_SOURCES: comma-separated source names to restrict a run
  - SYNC_CONCURRENCY (default 3), SYNC_BATCH_SIZE (default 100)
  - DRY_RUN / SYNC_DRY_RUN: compute everything, write nothing

Storage:
  - DB_DRIVER: duckdb (default), postgres or memory
  - DUCKDB_PATH, DATABASE_URL
  - HISTORY_PATH, HISTORY_IN_MEMORY

HTTP and logging:
  - HTTP_HOST, HTTP_PORT (default 8080), RATE_LIMIT_REQS, CORS_ORIGINS
  - LOG_LEVEL, LOG_FORMAT (json or console), LOG_CALLER

# Validation

Validate runs after loading and fails fast on inconsistent settings, for example
capacity ratios out of order or scoring weights that do not sum to one. Source
entries are checked with go-playground/validator tags.
*/
package config
