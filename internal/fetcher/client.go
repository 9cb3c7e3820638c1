// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/models"
)

const (
	// PageSize is the upstream maximum and the default hits per page.
	PageSize = 30

	// MaxPage is the deepest page the item-search API will serve.
	MaxPage = 100

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 2048
)

// Query selects one source's items upstream. Exactly one of Keyword and ShopCode
// is normally set; both are sent when present.
type Query struct {
	Source   string
	Keyword  string
	ShopCode string
	GenreID  string
	Hits     int
	Sort     string
	MinPrice int
	MaxPrice int
}

// QueryFor builds the query for a source, filling gaps from API defaults.
func QueryFor(src config.SourceConfig, rc config.RakutenConfig) Query {
	q := Query{
		Source:   src.Name,
		Keyword:  src.Query(),
		ShopCode: src.ShopCode,
		GenreID:  src.GenreID,
		Hits:     rc.Hits,
		Sort:     rc.Sort,
		MinPrice: rc.MinPrice,
	}
	if q.GenreID == "" {
		q.GenreID = rc.GenreID
	}
	if src.PriceRange.Min > q.MinPrice {
		q.MinPrice = src.PriceRange.Min
	}
	q.MaxPrice = src.PriceRange.Max
	return q
}

// Page is one decoded result page.
type Page struct {
	Items     []models.RawItem
	Number    int
	Count     int
	PageCount int
	// HasMore is true when a further page exists and this one was full.
	HasMore bool
}

// Fetcher fetches one page for a query. Implemented by Client and BreakerClient.
type Fetcher interface {
	Fetch(ctx context.Context, q Query, page int) (*Page, error)
}

// Client is the item-search API client. The limiter is shared by every caller.
//
// Example:
//
//	limiter := fetcher.NewLimiter(cfg.RateLimit)
//	client := fetcher.NewClient(cfg.Rakuten, limiter, fetcher.NewRetryPolicy(cfg.RateLimit))
//	page, err := client.Fetch(ctx, fetcher.QueryFor(src, cfg.Rakuten), 1)
type Client struct {
	baseURL       string
	applicationID string
	affiliateID   string
	userAgent     string
	client        *http.Client
	limiter       Limiter
	policy        RetryPolicy
	now           func() time.Time
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// NewClient creates an API client. A nil limiter means unlimited.
func NewClient(cfg config.RakutenConfig, limiter Limiter, policy RetryPolicy, opts ...ClientOption) *Client {
	if limiter == nil {
		limiter = Unlimited()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		applicationID: cfg.ApplicationID,
		affiliateID:   cfg.AffiliateID,
		userAgent:     cfg.UserAgent,
		client:        &http.Client{Timeout: timeout},
		limiter:       limiter,
		policy:        policy,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns page (1-based) of q's results.
func (c *Client) Fetch(ctx context.Context, q Query, page int) (*Page, error) {
	if page < 1 || page > MaxPage {
		return nil, fmt.Errorf("page %d out of range [1, %d]", page, MaxPage)
	}
	hits := q.Hits
	if hits <= 0 || hits > PageSize {
		hits = PageSize
	}

	reqURL := c.baseURL + "?" + c.params(q, page, hits).Encode()

	resp, err := c.doRequestWithRateLimit(ctx, q.Source, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upErr := &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		var envelope models.SearchResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			upErr.Code = envelope.Error
			upErr.Body = envelope.ErrorDescription
		}
		return nil, upErr
	}

	var sr models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if sr.Error != "" {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Code: sr.Error, Body: sr.ErrorDescription}
	}

	return &Page{
		Items:     sr.Items,
		Number:    page,
		Count:     sr.Count,
		PageCount: sr.PageCount,
		HasMore:   page < sr.PageCount && page < MaxPage && len(sr.Items) >= hits,
	}, nil
}

func (c *Client) params(q Query, page, hits int) url.Values {
	params := url.Values{}
	params.Set("applicationId", c.applicationID)
	if c.affiliateID != "" {
		params.Set("affiliateId", c.affiliateID)
	}
	params.Set("format", "json")
	params.Set("formatVersion", "2")
	params.Set("imageFlag", "1")
	params.Set("availability", "1")
	params.Set("hits", strconv.Itoa(hits))
	params.Set("page", strconv.Itoa(page))
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	if q.ShopCode != "" {
		params.Set("shopCode", q.ShopCode)
	}
	if q.GenreID != "" {
		params.Set("genreId", q.GenreID)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.MinPrice > 0 {
		params.Set("minPrice", strconv.Itoa(q.MinPrice))
	}
	if q.MaxPrice > 0 {
		params.Set("maxPrice", strconv.Itoa(q.MaxPrice))
	}
	return params
}

// doRequestWithRateLimit performs a GET through the shared limiter and retries
// HTTP 429 per the retry policy. Every attempt consumes budget.
func (c *Client) doRequestWithRateLimit(ctx context.Context, source, reqURL string) (*http.Response, error) {
	sleep := c.policy.sleepFunc()

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			metrics.RecordUpstreamRequest(source, 0, time.Since(start))
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		metrics.RecordUpstreamRequest(source, resp.StatusCode, time.Since(start))

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		retryAfter := resp.Header.Get("Retry-After")
		_ = resp.Body.Close()

		if attempt >= c.policy.MaxRetries {
			return nil, &RateLimitExceededError{Retries: c.policy.MaxRetries}
		}

		delay := c.policy.Delay(attempt, retryAfter, c.now())
		metrics.RecordRateLimitRetry(source)
		logging.Warn().
			Str("source", source).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Upstream returned HTTP 429, backing off")

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}
