// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package capacity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/store"
)

var now = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

func testConfig() config.CapacityConfig {
	return config.CapacityConfig{
		MaxProducts:       10,
		WarningRatio:      0.6,
		CriticalRatio:     0.8,
		TargetRatio:       0.7,
		WarningScale:      0.5,
		StaleAfter:        7 * 24 * time.Hour,
		LowPriorityCutoff: 5,
		DeleteBatchSize:   2,
	}
}

func product(id string, mutate func(*models.Product)) *models.Product {
	p := &models.Product{
		ID:           "src:" + id,
		Source:       "src",
		Title:        id,
		Brand:        "GU",
		Price:        1000,
		QualityScore: 50,
		IsActive:     true,
		LastSynced:   now,
	}
	if mutate != nil {
		mutate(p)
	}
	return p
}

func stale(p *models.Product)    { p.IsActive = false; p.LastSynced = now.Add(-30 * 24 * time.Hour) }
func lowPrio(p *models.Product)  { p.BrandPriority = 6 }
func inactive(p *models.Product) { p.IsActive = false }

func seed(t *testing.T, s *store.MemoryStore, ps ...*models.Product) {
	t.Helper()
	if _, err := s.Upsert(context.Background(), ps); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// mixedCatalog holds 10 products: two stale (one also low priority), one low
// priority, one recently deactivated and six healthy active products.
func mixedCatalog(t *testing.T) *store.MemoryStore {
	s := store.NewMemoryStore()
	seed(t, s,
		product("s1", func(p *models.Product) { stale(p); lowPrio(p) }),
		product("s2", stale),
		product("lp", lowPrio),
		product("in", inactive),
	)
	for i := range 6 {
		seed(t, s, product(fmt.Sprintf("a%d", i), func(p *models.Product) { p.QualityScore = 60 + i }))
	}
	return s
}

func newManager(s Store, cfg config.CapacityConfig) *Manager {
	return NewManager(s, cfg, WithClock(func() time.Time { return now }), WithLogger(logging.Nop()))
}

func TestClassify(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		total         int
		criticalCount int
		want          State
	}{
		{5, 0, Safe},
		{6, 0, Warning},
		{7, 0, Warning},
		{8, 0, Critical},
		{7, 7, Critical},
	}
	for _, tt := range tests {
		cfg.CriticalCount = tt.criticalCount
		if got := Classify(tt.total, cfg); got != tt.want {
			t.Errorf("Classify(%d, count %d) = %s, want %s", tt.total, tt.criticalCount, got, tt.want)
		}
	}
}

func TestVolumeScale(t *testing.T) {
	if Safe.VolumeScale() != 1 || Warning.VolumeScale() != 0.5 || Critical.VolumeScale() != 0 {
		t.Error("unexpected default volume scales")
	}
}

func TestState_JSON(t *testing.T) {
	for _, st := range []State{Safe, Warning, Critical} {
		data, err := json.Marshal(st)
		if err != nil {
			t.Fatalf("Marshal(%v) error = %v", st, err)
		}
		var back State
		if err := json.Unmarshal(data, &back); err != nil || back != st {
			t.Errorf("round trip %s = %v, %v", data, back, err)
		}
	}
	var st State
	if err := json.Unmarshal([]byte(`"full"`), &st); err == nil {
		t.Error("unknown state name should fail")
	}
}

func TestAssess(t *testing.T) {
	m := newManager(mixedCatalog(t), testConfig())
	st, err := m.Assess(context.Background())
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}
	if st.Total != 10 || st.Active != 7 || st.Inactive != 3 || st.State != Critical || st.Usage != 1 || st.Scale != 0 {
		t.Errorf("Assess() = %+v", st)
	}

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["state"] != "critical" {
		t.Errorf("state JSON = %v, want critical", decoded["state"])
	}
}

func TestEvict_NotCritical(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, product("a", nil), product("b", stale))

	report, err := newManager(s, testConfig()).Evict(context.Background())
	if err != nil {
		t.Fatalf("Evict() error = %v", err)
	}
	if report.Ran || report.Deleted != 0 {
		t.Errorf("report = %+v, want no-op", report)
	}
}

func TestEvict_Tiers(t *testing.T) {
	s := mixedCatalog(t)
	report, err := newManager(s, testConfig()).Evict(context.Background())
	if err != nil {
		t.Fatalf("Evict() error = %v", err)
	}

	if report.Target != 7 || report.Needed != 3 || report.Deleted != 3 {
		t.Errorf("target %d needed %d deleted %d, want 7/3/3", report.Target, report.Needed, report.Deleted)
	}
	want := []TierResult{{Tier: TierStaleInactive, Deleted: 2}, {Tier: TierLowPriority, Deleted: 1}}
	if len(report.Tiers) != len(want) {
		t.Fatalf("Tiers = %+v, want %+v", report.Tiers, want)
	}
	for i := range want {
		if report.Tiers[i] != want[i] {
			t.Errorf("Tiers[%d] = %+v, want %+v", i, report.Tiers[i], want[i])
		}
	}
	if report.After.Total != 7 || report.StillCritical || report.Err() != nil {
		t.Errorf("after = %+v, still critical %v", report.After, report.StillCritical)
	}
	for _, id := range []string{"src:s1", "src:s2", "src:lp"} {
		if _, err := s.Get(context.Background(), id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s should have been evicted", id)
		}
	}
}

func TestEvict_LowestQualityActive(t *testing.T) {
	s := store.NewMemoryStore()
	for i := range 10 {
		seed(t, s, product(fmt.Sprintf("p%d", i), func(p *models.Product) { p.QualityScore = 10 * i }))
	}

	report, err := newManager(s, testConfig()).Evict(context.Background())
	if err != nil {
		t.Fatalf("Evict() error = %v", err)
	}
	last := report.Tiers[len(report.Tiers)-1]
	if last.Tier != TierLowQuality || last.Deleted != 3 {
		t.Errorf("last tier = %+v, want low_quality/3", last)
	}
	for _, id := range []string{"src:p0", "src:p1", "src:p2"} {
		if _, err := s.Get(context.Background(), id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s should have been evicted", id)
		}
	}
}

func TestEvict_MaxDeletePerRun(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDeletePerRun = 1

	report, err := newManager(mixedCatalog(t), cfg).Evict(context.Background())
	if err != nil {
		t.Fatalf("Evict() error = %v", err)
	}
	if report.Deleted != 1 || !report.StillCritical {
		t.Errorf("deleted %d still critical %v, want 1/true", report.Deleted, report.StillCritical)
	}
	if !errors.Is(report.Err(), ErrCapacityCritical) {
		t.Errorf("Err() = %v, want ErrCapacityCritical", report.Err())
	}
}

func TestEvict_DryRunMatchesLive(t *testing.T) {
	s := mixedCatalog(t)
	dry, err := newManager(s, testConfig()).WithDryRun(true).Evict(context.Background())
	if err != nil {
		t.Fatalf("dry Evict() error = %v", err)
	}
	if n, _ := s.Count(context.Background(), store.Filter{}); n != 10 {
		t.Fatalf("dry run deleted products: %d left", n)
	}

	live, err := newManager(s, testConfig()).Evict(context.Background())
	if err != nil {
		t.Fatalf("live Evict() error = %v", err)
	}
	if !dry.DryRun || dry.Deleted != live.Deleted || dry.After.Total != live.After.Total {
		t.Errorf("dry %+v differs from live %+v", dry, live)
	}
	for i := range live.Tiers {
		if dry.Tiers[i] != live.Tiers[i] {
			t.Errorf("tier %d: dry %+v, live %+v", i, dry.Tiers[i], live.Tiers[i])
		}
	}
}

type flakyStore struct {
	*store.MemoryStore
}

func (flakyStore) DeleteInactiveOlderThan(context.Context, time.Time, int) (int, error) {
	return 0, &store.WriteError{Op: "delete_stale", Err: errors.New("disk full")}
}

func TestEvict_BatchFailureContinues(t *testing.T) {
	s := flakyStore{mixedCatalog(t)}
	report, err := newManager(s, testConfig()).Evict(context.Background())
	if err != nil {
		t.Fatalf("Evict() error = %v", err)
	}
	if report.BatchFailures != 1 || report.Tiers[0].Failures != 1 {
		t.Errorf("failures = %d, tier0 = %+v", report.BatchFailures, report.Tiers[0])
	}
	if report.Deleted != 3 || report.StillCritical {
		t.Errorf("later tiers should cover the need: deleted %d", report.Deleted)
	}
}

func TestEvict_CriticalCountBelowTargetRatio(t *testing.T) {
	cfg := testConfig()
	cfg.CriticalCount = 6
	s := store.NewMemoryStore()
	for i := range 6 {
		seed(t, s, product(fmt.Sprintf("i%d", i), inactive))
	}

	m := newManager(s, cfg)
	if got := m.Target(); got != 5 {
		t.Fatalf("Target() = %d, want 5", got)
	}
	report, err := m.Evict(context.Background())
	if err != nil {
		t.Fatalf("Evict() error = %v", err)
	}
	if !report.Ran || report.Needed != 1 || report.Deleted != 1 {
		t.Errorf("ran %v needed %d deleted %d, want true/1/1", report.Ran, report.Needed, report.Deleted)
	}
	if report.After.State == Critical || report.StillCritical || report.Err() != nil {
		t.Errorf("after = %+v, still critical %v", report.After, report.StillCritical)
	}
}

func TestTarget_NeverNegative(t *testing.T) {
	cfg := testConfig()
	cfg.CriticalCount = 1
	if got := newManager(store.NewMemoryStore(), cfg).Target(); got != 0 {
		t.Errorf("Target() = %d, want 0", got)
	}
}
