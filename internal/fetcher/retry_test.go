// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package fetcher

import (
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/atelier/internal/config"
)

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(time.Second, 30*time.Second)
	tests := map[int]time.Duration{
		0:  time.Second,
		1:  2 * time.Second,
		4:  16 * time.Second,
		5:  30 * time.Second,
		40: 30 * time.Second,
	}
	for attempt, want := range tests {
		if got := b(attempt); got != want {
			t.Errorf("backoff(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	p := RetryPolicy{MaxRetries: 3, Backoff: FixedBackoff(2 * time.Second), MaxDelay: 10 * time.Second}

	tests := []struct {
		name       string
		retryAfter string
		want       time.Duration
	}{
		{"backoff only", "", 2 * time.Second},
		{"retry-after seconds", "7", 7 * time.Second},
		{"retry-after capped", "120", 10 * time.Second},
		{"retry-after date", now.Add(5 * time.Second).Format(http.TimeFormat), 5 * time.Second},
		{"retry-after garbage", "soon", 2 * time.Second},
		{"retry-after negative", "-3", 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Delay(0, tt.retryAfter, now); got != tt.want {
				t.Errorf("Delay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRetryPolicy(t *testing.T) {
	cfg := config.RateLimitConfig{
		Backoff:    config.BackoffFixed,
		MaxRetries: 4,
		BaseDelay:  3 * time.Second,
		MaxDelay:   time.Minute,
	}
	p := NewRetryPolicy(cfg)
	if p.MaxRetries != 4 {
		t.Errorf("MaxRetries = %d, want 4", p.MaxRetries)
	}
	if got := p.Backoff(3); got != 3*time.Second {
		t.Errorf("fixed backoff(3) = %v, want 3s", got)
	}

	cfg.Backoff = config.BackoffExponential
	if got := NewRetryPolicy(cfg).Backoff(2); got != 12*time.Second {
		t.Errorf("exponential backoff(2) = %v, want 12s", got)
	}
}
