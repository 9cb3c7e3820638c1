// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package fetcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/atelier/internal/config"
)

type scriptedFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *scriptedFetcher) Fetch(ctx context.Context, q Query, page int) (*Page, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &Page{Number: page}, nil
}

func breakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

func TestBreakerClient_TripsOnServerErrors(t *testing.T) {
	next := &scriptedFetcher{err: &UpstreamError{StatusCode: 503}}
	b := NewBreakerClient(next, breakerConfig())

	for i := 0; i < 3; i++ {
		if _, err := b.Fetch(t.Context(), Query{}, 1); !errors.Is(err, ErrUpstream) {
			t.Fatalf("call %d error = %v, want upstream error", i, err)
		}
	}

	_, err := b.Fetch(t.Context(), Query{}, 1)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if next.calls.Load() != 3 {
		t.Errorf("next called %d times, want 3", next.calls.Load())
	}
	if b.State() != "open" {
		t.Errorf("State() = %q, want open", b.State())
	}
}

func TestBreakerClient_TripsOnRateLimitExhaustion(t *testing.T) {
	next := &scriptedFetcher{err: &RateLimitExceededError{Retries: 5}}
	b := NewBreakerClient(next, breakerConfig())

	for i := 0; i < 3; i++ {
		_, _ = b.Fetch(t.Context(), Query{}, 1)
	}
	if b.State() != "open" {
		t.Errorf("State() = %q, want open", b.State())
	}
}

func TestBreakerClient_ClientErrorsDoNotTrip(t *testing.T) {
	next := &scriptedFetcher{err: &UpstreamError{StatusCode: 400, Code: "wrong_parameter"}}
	b := NewBreakerClient(next, breakerConfig())

	for i := 0; i < 10; i++ {
		_, _ = b.Fetch(t.Context(), Query{}, 1)
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed", b.State())
	}
	if next.calls.Load() != 10 {
		t.Errorf("next called %d times, want 10", next.calls.Load())
	}
}

func TestBreakerClient_PassesThrough(t *testing.T) {
	b := NewBreakerClient(&scriptedFetcher{}, breakerConfig())
	page, err := b.Fetch(t.Context(), Query{}, 4)
	if err != nil || page.Number != 4 {
		t.Errorf("Fetch() = %+v, %v", page, err)
	}
}
