// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package fetcher is the rate-limited client for the upstream item-search API.

A single Limiter is shared by every source worker so the process never exceeds
the per-window call budget. Two strategies are available:

  - FixedWindowLimiter: counter reset every window; callers block until the reset
  - TokenBucketLimiter: golang.org/x/time/rate bucket, burst equal to the budget

Both accept an injected clock and sleep function, and both fail with
ErrRateLimitWaitExceeded instead of blocking past MaxWait.

HTTP 429 responses are retried per RetryPolicy (exponential or fixed backoff,
Retry-After honored, every wait capped). When retries run out Fetch returns a
*RateLimitExceededError. Any other non-2xx status returns an *UpstreamError without
retry; the caller decides whether to skip the page or abort the source.

BreakerClient adds a sony/gobreaker circuit breaker on top of Client.
*/
package fetcher
