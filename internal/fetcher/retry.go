// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package fetcher

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/atelier/internal/config"
)

// BackoffFunc returns the delay before retry number attempt (0-based).
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff doubles base each attempt: 1s, 2s, 4s, 8s, 16s, capped at maxDelay.
func ExponentialBackoff(base, maxDelay time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		if attempt < 0 {
			attempt = 0
		}
		if attempt > 30 {
			return maxDelay
		}
		d := base * time.Duration(1<<uint(attempt))
		if maxDelay > 0 && d > maxDelay {
			return maxDelay
		}
		return d
	}
}

// FixedBackoff always waits d.
func FixedBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// RetryPolicy governs retries after HTTP 429.
type RetryPolicy struct {
	MaxRetries int
	Backoff    BackoffFunc
	// MaxDelay caps every wait, including server-provided Retry-After values.
	MaxDelay time.Duration
	Sleep    SleepFunc
}

// NewRetryPolicy builds the policy described by cfg.
func NewRetryPolicy(cfg config.RateLimitConfig) RetryPolicy {
	backoff := ExponentialBackoff(cfg.BaseDelay, cfg.MaxDelay)
	if cfg.Backoff == config.BackoffFixed {
		backoff = FixedBackoff(cfg.BaseDelay)
	}
	return RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		Backoff:    backoff,
		MaxDelay:   cfg.MaxDelay,
		Sleep:      SleepContext,
	}
}

// Delay returns the wait before retry attempt. A Retry-After header (seconds or
// HTTP date) takes precedence over the backoff function.
func (p RetryPolicy) Delay(attempt int, retryAfter string, now time.Time) time.Duration {
	var delay time.Duration
	if p.Backoff != nil {
		delay = p.Backoff(attempt)
	}
	if d, ok := parseRetryAfter(retryAfter, now); ok {
		delay = d
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

func (p RetryPolicy) sleepFunc() SleepFunc {
	if p.Sleep != nil {
		return p.Sleep
	}
	return SleepContext
}

// parseRetryAfter accepts delta-seconds or an HTTP date (RFC 9110).
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}
