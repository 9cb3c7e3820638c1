// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/metrics"
)

// Limiter gates outbound calls against a shared budget. Implementations are safe
// for concurrent use by all source workers.
type Limiter interface {
	Wait(ctx context.Context) error
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the production SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LimiterOption customizes a limiter; tests use it to inject a fake clock.
type LimiterOption func(*limiterOptions)

type limiterOptions struct {
	now   func() time.Time
	sleep SleepFunc
}

// WithClock sets the time source.
func WithClock(now func() time.Time) LimiterOption {
	return func(o *limiterOptions) { o.now = now }
}

// WithSleep sets the sleep function.
func WithSleep(sleep SleepFunc) LimiterOption {
	return func(o *limiterOptions) { o.sleep = sleep }
}

func buildOptions(opts []LimiterOption) limiterOptions {
	o := limiterOptions{now: time.Now, sleep: SleepContext}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewLimiter builds the limiter selected by cfg.Strategy.
func NewLimiter(cfg config.RateLimitConfig, opts ...LimiterOption) Limiter {
	if cfg.Strategy == config.StrategyTokenBucket {
		return NewTokenBucketLimiter(cfg.CallsPerWindow, cfg.Window, cfg.MaxWait, opts...)
	}
	return NewFixedWindowLimiter(cfg.CallsPerWindow, cfg.Window, cfg.MaxWait, opts...)
}

// FixedWindowLimiter counts calls in a window that resets every Window after the
// first call. When the budget is spent, callers sleep until the reset.
type FixedWindowLimiter struct {
	budget  int
	window  time.Duration
	maxWait time.Duration
	opts    limiterOptions

	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// NewFixedWindowLimiter creates a limiter allowing budget calls per window.
// maxWait 0 means waits are unbounded.
func NewFixedWindowLimiter(budget int, window, maxWait time.Duration, opts ...LimiterOption) *FixedWindowLimiter {
	if budget < 1 {
		budget = 1
	}
	return &FixedWindowLimiter{
		budget:  budget,
		window:  window,
		maxWait: maxWait,
		opts:    buildOptions(opts),
	}
}

// Wait takes one call from the budget, sleeping through window resets as needed.
func (l *FixedWindowLimiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait, ok := l.take()
		if ok {
			return nil
		}
		if l.maxWait > 0 && wait > l.maxWait {
			return fmt.Errorf("%w: window resets in %s", ErrRateLimitWaitExceeded, wait)
		}

		metrics.RecordRateLimitWait(wait)
		if err := l.opts.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// take claims a slot or returns the time until the window resets.
func (l *FixedWindowLimiter) take() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.opts.now()
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}
	if l.count < l.budget {
		l.count++
		return 0, true
	}
	return l.window - now.Sub(l.windowStart), false
}

// Remaining returns the calls left in the current window.
func (l *FixedWindowLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.windowStart.IsZero() || l.opts.now().Sub(l.windowStart) >= l.window {
		return l.budget
	}
	return l.budget - l.count
}

// TokenBucketLimiter spreads the budget evenly over the window with burst equal
// to the budget. The delay is computed against the injected clock.
type TokenBucketLimiter struct {
	lim     *rate.Limiter
	maxWait time.Duration
	opts    limiterOptions
}

// NewTokenBucketLimiter creates a token bucket refilling budget tokens per window.
func NewTokenBucketLimiter(budget int, window, maxWait time.Duration, opts ...LimiterOption) *TokenBucketLimiter {
	if budget < 1 {
		budget = 1
	}
	return &TokenBucketLimiter{
		lim:     rate.NewLimiter(rate.Every(window/time.Duration(budget)), budget),
		maxWait: maxWait,
		opts:    buildOptions(opts),
	}
}

// Wait reserves one token and sleeps until it is available.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.opts.now()
	r := l.lim.ReserveN(now, 1)
	if !r.OK() {
		return ErrRateLimitWaitExceeded
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return nil
	}
	if l.maxWait > 0 && delay > l.maxWait {
		r.CancelAt(now)
		return fmt.Errorf("%w: next token in %s", ErrRateLimitWaitExceeded, delay)
	}

	metrics.RecordRateLimitWait(delay)
	if err := l.opts.sleep(ctx, delay); err != nil {
		r.CancelAt(l.opts.now())
		return err
	}
	return nil
}

// noopLimiter never blocks.
type noopLimiter struct{}

func (noopLimiter) Wait(ctx context.Context) error { return ctx.Err() }

// Unlimited returns a Limiter that never blocks.
func Unlimited() Limiter { return noopLimiter{} }
