// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package fetcher

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/models"
)

func makeItems(n int) []models.RawItem {
	items := make([]models.RawItem, n)
	for i := range items {
		items[i] = models.RawItem{
			ItemName:       fmt.Sprintf("ニット カーディガン %d", i),
			ItemCode:       fmt.Sprintf("shop:%d", i),
			ItemPrice:      2990,
			SmallImageURLs: models.ImageURLs{"https://thumbnail.image.rakuten.co.jp/a.jpg?_ex=128x128"},
		}
	}
	return items
}

func writeSearch(t *testing.T, w http.ResponseWriter, page, pageCount, n int) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	resp := models.SearchResponse{Count: pageCount * PageSize, Page: page, PageCount: pageCount, Hits: n, Items: makeItems(n)}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Errorf("encode: %v", err)
	}
}

func newTestClient(url string, clock *fakeClock, maxRetries int) *Client {
	cfg := config.RakutenConfig{BaseURL: url, ApplicationID: "app-1", AffiliateID: "aff-1", Hits: PageSize, Timeout: 5 * time.Second}
	policy := RetryPolicy{
		MaxRetries: maxRetries,
		Backoff:    ExponentialBackoff(time.Second, 30*time.Second),
		MaxDelay:   30 * time.Second,
		Sleep:      clock.Sleep,
	}
	c := NewClient(cfg, Unlimited(), policy)
	c.now = clock.Now
	return c
}

func TestClientFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		for key, want := range map[string]string{
			"applicationId": "app-1",
			"affiliateId":   "aff-1",
			"shopCode":      "uniqlo",
			"genreId":       "100371",
			"formatVersion": "2",
			"hits":          "30",
			"page":          "1",
			"minPrice":      "1000",
		} {
			if got := q.Get(key); got != want {
				t.Errorf("query %s = %q, want %q", key, got, want)
			}
		}
		writeSearch(t, w, 1, 3, PageSize)
	}))
	defer server.Close()

	c := newTestClient(server.URL, newFakeClock(), 3)
	page, err := c.Fetch(t.Context(), Query{Source: "uniqlo", ShopCode: "uniqlo", GenreID: "100371", Hits: 30, MinPrice: 1000}, 1)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(page.Items) != PageSize {
		t.Errorf("len(Items) = %d, want %d", len(page.Items), PageSize)
	}
	if !page.HasMore {
		t.Error("HasMore should be true on a full page 1 of 3")
	}
	if page.Items[0].SmallImageURLs.First() == "" {
		t.Error("image URLs not decoded")
	}
}

func TestClientFetch_HasMore(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		pageCount int
		items     int
		want      bool
	}{
		{"last page", 3, 3, PageSize, false},
		{"short page", 1, 3, 12, false},
		{"middle page", 2, 3, PageSize, true},
		{"empty result", 1, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeSearch(t, w, tt.page, tt.pageCount, tt.items)
			}))
			defer server.Close()

			page, err := newTestClient(server.URL, newFakeClock(), 0).Fetch(t.Context(), Query{Keyword: "ZARA"}, tt.page)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if page.HasMore != tt.want {
				t.Errorf("HasMore = %v, want %v", page.HasMore, tt.want)
			}
		})
	}
}

func TestClientFetch_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeSearch(t, w, 1, 1, 5)
	}))
	defer server.Close()

	clock := newFakeClock()
	page, err := newTestClient(server.URL, clock, 5).Fetch(t.Context(), Query{Keyword: "GU"}, 1)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(page.Items) != 5 {
		t.Errorf("len(Items) = %d, want 5", len(page.Items))
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	sleeps := clock.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != time.Second || sleeps[1] != 2*time.Second {
		t.Errorf("sleeps = %v, want [1s 2s]", sleeps)
	}
}

func TestClientFetch_RetryAfterHeader(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeSearch(t, w, 1, 1, 1)
	}))
	defer server.Close()

	clock := newFakeClock()
	if _, err := newTestClient(server.URL, clock, 2).Fetch(t.Context(), Query{Keyword: "GU"}, 1); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if sleeps := clock.Sleeps(); len(sleeps) != 1 || sleeps[0] != 3*time.Second {
		t.Errorf("sleeps = %v, want [3s]", sleeps)
	}
}

func TestClientFetch_RateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, newFakeClock(), 2).Fetch(t.Context(), Query{Keyword: "GU"}, 1)

	var rlErr *RateLimitExceededError
	if !errors.As(err, &rlErr) {
		t.Fatalf("Fetch() error = %v, want *RateLimitExceededError", err)
	}
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Error("error should wrap ErrRateLimitExceeded")
	}
	if rlErr.Retries != 2 || calls.Load() != 3 {
		t.Errorf("retries = %d, calls = %d, want 2 and 3", rlErr.Retries, calls.Load())
	}
}

func TestClientFetch_UpstreamErrorNotRetried(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"server error", http.StatusServiceUnavailable, "maintenance", ""},
		{"api error envelope", http.StatusBadRequest, `{"error":"wrong_parameter","error_description":"page must be 1-100"}`, "wrong_parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, newFakeClock(), 5).Fetch(t.Context(), Query{Keyword: "GU"}, 1)

			var upErr *UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("Fetch() error = %v, want *UpstreamError", err)
			}
			if upErr.StatusCode != tt.status || upErr.Code != tt.wantCode {
				t.Errorf("UpstreamError = %+v", upErr)
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", calls.Load())
			}
		})
	}
}

func TestClientFetch_UsesSharedLimiterPerAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeSearch(t, w, 1, 1, 1)
	}))
	defer server.Close()

	clock := newFakeClock()
	limiter := NewFixedWindowLimiter(10, time.Minute, 0, WithClock(clock.Now), WithSleep(clock.Sleep))
	c := NewClient(config.RakutenConfig{BaseURL: server.URL}, limiter, RetryPolicy{MaxRetries: 1, Backoff: FixedBackoff(0), Sleep: clock.Sleep})

	if _, err := c.Fetch(t.Context(), Query{Keyword: "x"}, 1); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got := limiter.Remaining(); got != 8 {
		t.Errorf("Remaining() = %d, want 8", got)
	}
}

func TestClientFetch_InvalidPage(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1", newFakeClock(), 0)
	for _, page := range []int{0, MaxPage + 1} {
		if _, err := c.Fetch(t.Context(), Query{Keyword: "x"}, page); err == nil {
			t.Errorf("Fetch(page=%d) expected error", page)
		}
	}
}

func TestQueryFor(t *testing.T) {
	rc := config.RakutenConfig{GenreID: "100371", Hits: 30, Sort: "-updateTimestamp", MinPrice: 1000}
	src := config.SourceConfig{
		Name:       "muji",
		Keywords:   []string{"無印良品", "MUJI"},
		PriceRange: config.PriceRange{Min: 3000, Max: 10000},
	}

	q := QueryFor(src, rc)
	if q.Keyword != "無印良品 MUJI" || q.GenreID != "100371" {
		t.Errorf("QueryFor() = %+v", q)
	}
	if q.MinPrice != 3000 || q.MaxPrice != 10000 {
		t.Errorf("price range = %d-%d, want 3000-10000", q.MinPrice, q.MaxPrice)
	}
}
