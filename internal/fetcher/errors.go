// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimitExceeded means HTTP 429 persisted through every retry.
	// The pipeline aborts the current source and continues with others.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrRateLimitWaitExceeded means the local call budget would block longer than MaxWait.
	ErrRateLimitWaitExceeded = errors.New("rate limit wait exceeds max wait")

	// ErrUpstream marks non-429 HTTP failures and API-level error envelopes.
	ErrUpstream = errors.New("upstream error")

	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// RateLimitExceededError carries the retry count of an exhausted 429 loop.
type RateLimitExceededError struct {
	Retries int
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d retries (HTTP 429)", e.Retries)
}

func (e *RateLimitExceededError) Unwrap() error { return ErrRateLimitExceeded }

// UpstreamError is a non-429 failure. StatusCode is the HTTP status; Code is the
// API's own error code when the body carried one.
type UpstreamError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream returned HTTP %d (%s): %s", e.StatusCode, e.Code, e.Body)
	}
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// Temporary reports whether the failure is server-side (5xx).
func (e *UpstreamError) Temporary() bool {
	return e.StatusCode >= 500
}
