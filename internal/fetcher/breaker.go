// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package fetcher

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/metrics"
)

// BreakerName labels the upstream breaker in metrics and logs.
const BreakerName = "item-search-api"

// BreakerClient wraps a Fetcher with a circuit breaker so a failing upstream is
// not hammered by every source worker.
//
// Exhausted 429 loops, 5xx responses and transport errors count as failures.
// Client-side rejections (4xx other than 429), local budget waits and caller
// cancellation do not.
type BreakerClient struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker[*Page]
	name string
}

// NewBreakerClient wraps next with a breaker configured from cfg.
func NewBreakerClient(next Fetcher, cfg config.BreakerConfig) *BreakerClient {
	name := BreakerName
	minRequests := cfg.MinRequests
	failureRatio := cfg.FailureRatio

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*Page](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := ratio >= failureRatio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		IsSuccessful: countsAsSuccess,
	})

	return &BreakerClient{next: next, cb: cb, name: name}
}

// Fetch implements Fetcher.
func (b *BreakerClient) Fetch(ctx context.Context, q Query, page int) (*Page, error) {
	result, err := b.cb.Execute(func() (*Page, error) {
		return b.next.Fetch(ctx, q, page)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// State returns the breaker state name.
func (b *BreakerClient) State() string {
	return stateToString(b.cb.State())
}

func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrRateLimitWaitExceeded) {
		return true
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return !upErr.Temporary()
	}
	return false
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
