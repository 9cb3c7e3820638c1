// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/atelier/internal/capacity"
	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/fetcher"
	"github.com/tomtom215/atelier/internal/history"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/store"
	"github.com/tomtom215/atelier/internal/testinfra"
)

var now = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type harness struct {
	cfg      *config.Config
	server   *testinfra.CatalogServer
	store    *store.MemoryStore
	history  *history.MemoryStore
	pipeline *Pipeline
}

func testSources() []config.SourceConfig {
	return []config.SourceConfig{
		{
			Name: "uniqlo", Brand: "UNIQLO", ShopCode: "uniqlo", Priority: 0, Category: "basic",
			PriceRange: config.PriceLow, InitialProducts: 50, MaxStoredCount: 200,
			TargetActiveCount: 40, RotationPeriodDays: 2,
		},
		{
			Name: "zara", Brand: "ZARA", Keywords: []string{"ZARA"}, Priority: 2, Category: "trend",
			PriceRange: config.PriceLowMiddle, InitialProducts: 50, MaxStoredCount: 200,
			TargetActiveCount: 40, RotationPeriodDays: 3,
		},
	}
}

// newHarness serves 45 uniqlo items and 10 zara items.
func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	srv := testinfra.NewCatalogServer()
	t.Cleanup(srv.Close)
	for i := range 45 {
		srv.AddItems("uniqlo", testinfra.Item("uniqlo", fmt.Sprintf("u%02d", i), 1990))
	}
	for i := range 10 {
		srv.AddItems("ZARA", testinfra.Item("zara", fmt.Sprintf("z%02d", i), 5990))
	}

	cfg := config.Defaults()
	cfg.Rakuten.BaseURL = srv.URL
	cfg.Rakuten.ApplicationID = "test"
	cfg.Sources = testSources()
	cfg.Sync.MinProducts = 10
	cfg.Sync.BatchSize = 20
	cfg.Sync.Concurrency = 2
	if mutate != nil {
		mutate(cfg)
	}

	client := fetcher.NewClient(cfg.Rakuten, fetcher.Unlimited(), fetcher.RetryPolicy{MaxRetries: 1, Backoff: fetcher.FixedBackoff(0)})
	s := store.NewMemoryStore()
	h := history.NewMemoryStore()
	logger := logging.Nop()
	return &harness{
		cfg:     cfg,
		server:  srv,
		store:   s,
		history: h,
		pipeline: New(cfg, Deps{
			Store:   s,
			History: h,
			Fetcher: client,
			Logger:  &logger,
			Now:     func() time.Time { return now },
		}),
	}
}

func (h *harness) count(t *testing.T, f store.Filter) int {
	t.Helper()
	n, err := h.store.Count(context.Background(), f)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}

func TestRun_IngestsRotatesAndRecords(t *testing.T) {
	h := newHarness(t, nil)

	sum, err := h.pipeline.Run(t.Context(), RunOptions{Trigger: TriggerManual})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sum.Sources) != 2 || sum.Sources[0].Source != "uniqlo" || sum.Sources[1].Source != "zara" {
		t.Fatalf("sources = %+v, want uniqlo then zara", sum.Sources)
	}
	u := sum.Source("uniqlo")
	if u.Status != StatusOK || u.Target != 50 || u.Fetched != 45 || u.Inserted != 45 || u.PagesFetched != 2 || !u.Due {
		t.Errorf("uniqlo summary = %+v", u)
	}
	if z := sum.Source("zara"); z.Status != StatusOK || z.Inserted != 10 || z.EffectivePriority != 1 {
		t.Errorf("zara summary = %+v", z)
	}
	if sum.Saved() != 55 || len(sum.Failures) != 0 || sum.RunID == "" {
		t.Errorf("summary saved = %d, failures = %v, run id %q", sum.Saved(), sum.Failures, sum.RunID)
	}

	if got := h.count(t, store.Filter{}); got != 55 {
		t.Errorf("stored = %d, want 55", got)
	}
	// uniqlo holds 45 active against a target of 40.
	if got := h.count(t, store.Filter{Source: "uniqlo", Active: store.Bool(true)}); got != 40 {
		t.Errorf("uniqlo active = %d, want 40", got)
	}
	if len(sum.Rotation) != 2 || sum.Rotation[0].Deactivated != 5 {
		t.Errorf("rotation = %+v", sum.Rotation)
	}

	rec, ok, _ := h.history.Get(t.Context(), "uniqlo")
	if !ok || rec.LastSyncedCount != 45 || !rec.LastSyncedAt.Equal(now) {
		t.Errorf("uniqlo history = %+v (ok %v)", rec, ok)
	}

	p, err := h.store.Get(t.Context(), models.ProductID("uniqlo", "uniqlo:u00"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.RecommendationScore <= 0 || p.QualityScore <= 0 || p.TitleKey == "" {
		t.Errorf("stored product not scored: %+v", p)
	}

	if sum.Eviction == nil || sum.Eviction.Ran {
		t.Errorf("eviction = %+v, want a report that did not run", sum.Eviction)
	}
	if h.pipeline.Last() != sum {
		t.Error("Last() should return the finished summary")
	}
}

func TestRun_OnRunCompleted(t *testing.T) {
	h := newHarness(t, nil)
	var got []*RunSummary
	h.pipeline.SetOnRunCompleted(func(sum *RunSummary) { got = append(got, sum) })

	sum, err := h.pipeline.Run(t.Context(), RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got) != 1 || got[0] != sum {
		t.Errorf("callback summaries = %v, want the finished run", got)
	}
}

func TestRun_SecondRunRefreshesOnly(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.pipeline.Run(t.Context(), RunOptions{}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	sum, err := h.pipeline.Run(t.Context(), RunOptions{Sources: []string{"uniqlo"}})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	u := sum.Source("uniqlo")
	// Not due: a fifth of InitialProducts, floored at MinProducts.
	if u.Due || u.Target != 10 || u.Updated != 10 || u.Inserted != 0 || u.PagesFetched != 1 {
		t.Errorf("uniqlo summary = %+v", u)
	}
	if len(sum.Sources) != 1 {
		t.Errorf("explicit source filter ignored: %d sources", len(sum.Sources))
	}
	rec, _, _ := h.history.Get(t.Context(), "uniqlo")
	if rec.CumulativeSynced != 55 || rec.LastSyncedCount != 10 {
		t.Errorf("history = %+v, want cumulative 55", rec)
	}
}

func TestRun_DryRun(t *testing.T) {
	h := newHarness(t, nil)

	sum, err := h.pipeline.Run(t.Context(), RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !sum.DryRun || sum.Source("uniqlo").Inserted != 45 {
		t.Errorf("dry-run summary = %+v", sum.Source("uniqlo"))
	}
	if got := h.count(t, store.Filter{}); got != 0 {
		t.Errorf("dry run stored %d products", got)
	}
	if all, _ := h.history.All(t.Context()); len(all) != 0 {
		t.Errorf("dry run wrote history: %+v", all)
	}
}

func TestRun_PageFailures(t *testing.T) {
	t.Run("skipped page", func(t *testing.T) {
		h := newHarness(t, nil)
		h.server.FailPage("uniqlo", 1, http.StatusInternalServerError)

		sum, err := h.pipeline.Run(t.Context(), RunOptions{})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		u := sum.Source("uniqlo")
		if u.Status != StatusOK || u.PagesSkipped != 1 || u.Inserted != 15 {
			t.Errorf("uniqlo summary = %+v", u)
		}
	})

	t.Run("too many failures abort the source only", func(t *testing.T) {
		h := newHarness(t, func(c *config.Config) { c.Sync.MaxPageFailures = 1 })
		h.server.FailPage("uniqlo", 1, http.StatusBadGateway)

		sum, err := h.pipeline.Run(t.Context(), RunOptions{})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if u := sum.Source("uniqlo"); u.Status != StatusFailed || u.Inserted != 0 {
			t.Errorf("uniqlo summary = %+v", u)
		}
		if z := sum.Source("zara"); z.Status != StatusOK || z.Inserted != 10 {
			t.Errorf("zara should be unaffected: %+v", z)
		}
		if len(sum.Failures) != 1 || sum.Failures[0].Source != "uniqlo" || sum.Failures[0].Stage != StageIngest {
			t.Errorf("failures = %+v", sum.Failures)
		}
	})
}

func TestRun_RateLimitAbortsSource(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Sync.Concurrency = 1 })
	h.server.FailNext(http.StatusTooManyRequests, http.StatusTooManyRequests)

	sum, err := h.pipeline.Run(t.Context(), RunOptions{Sources: []string{"uniqlo"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	u := sum.Source("uniqlo")
	if u.Status != StatusFailed || !strings.Contains(u.Err, "rate limit exceeded") {
		t.Errorf("uniqlo summary = %+v", u)
	}
	if n := h.server.RequestsFor("uniqlo"); n != 2 {
		t.Errorf("requests = %d, want 2 (one retry, then abort)", n)
	}
}

func TestRun_CriticalCapacitySkipsIngestAndEvicts(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Capacity.MaxProducts = 10
		c.Capacity.CriticalCount = 0
	})
	old := make([]*models.Product, 9)
	for i := range old {
		old[i] = &models.Product{
			ID:            fmt.Sprintf("old:%d", i),
			Source:        "old",
			Title:         fmt.Sprintf("old %d", i),
			BrandPriority: 6,
			LastSynced:    now.Add(-30 * 24 * time.Hour),
		}
	}
	if _, err := h.store.Upsert(t.Context(), old); err != nil {
		t.Fatal(err)
	}

	sum, err := h.pipeline.Run(t.Context(), RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, s := range sum.Sources {
		if s.Status != StatusSkipped || s.SkipReason != SkipCapacityCritical {
			t.Errorf("%s = %+v, want skipped for capacity", s.Source, s)
		}
	}
	if h.server.RequestsFor("uniqlo") != 0 {
		t.Error("critical capacity should not fetch")
	}
	if sum.Eviction == nil || !sum.Eviction.Ran || sum.Eviction.Deleted != 2 {
		t.Errorf("eviction = %+v, want 2 deleted", sum.Eviction)
	}
	if got := h.count(t, store.Filter{}); got != 7 {
		t.Errorf("stored = %d, want 7", got)
	}
	if sum.CapacityAfter.Total != 7 || len(sum.Warnings) != 0 {
		t.Errorf("after = %+v, warnings = %v", sum.CapacityAfter, sum.Warnings)
	}

	// A restarted process reads the eviction report back from history.
	restarted := New(h.cfg, Deps{Store: h.store, History: h.history}).Last()
	if restarted == nil || restarted.RunID != sum.RunID {
		t.Fatalf("Last() after restart = %+v, want run %s", restarted, sum.RunID)
	}
	if ev := restarted.Eviction; ev == nil || ev.Deleted != 2 || ev.Before.State != capacity.Critical {
		t.Errorf("persisted eviction = %+v", ev)
	}
}

func TestLast_NothingPersisted(t *testing.T) {
	h := newHarness(t, nil)
	if got := h.pipeline.Last(); got != nil {
		t.Errorf("Last() = %+v, want nil before any run", got)
	}
	_ = h.history.Close()
	if got := New(h.cfg, Deps{Store: h.store, History: h.history}).Last(); got != nil {
		t.Errorf("Last() with closed history = %+v, want nil", got)
	}
}

func TestRun_Canceled(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	sum, err := h.pipeline.Run(ctx, RunOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	for _, s := range sum.Sources {
		if s.Status != StatusSkipped || s.SkipReason != SkipCanceled {
			t.Errorf("%s = %+v, want skipped: canceled", s.Source, s)
		}
	}
	if sum.Rotation != nil || sum.Eviction != nil {
		t.Error("maintenance passes should not run after cancellation")
	}
}

func TestRun_InProgress(t *testing.T) {
	h := newHarness(t, nil)
	h.pipeline.running.Store(true)
	if _, err := h.pipeline.Run(t.Context(), RunOptions{}); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("Run() error = %v, want ErrRunInProgress", err)
	}
	h.pipeline.running.Store(false)
	if h.pipeline.Running() {
		t.Error("Running() should be false")
	}
}
