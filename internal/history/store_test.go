// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/models"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := t.Context()

	if _, ok, err := s.Get(ctx, "uniqlo"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want false, nil", ok, err)
	}

	at := time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC)
	uniqlo := models.SyncHistory{Source: "uniqlo", TargetCount: 500}.Record(at, 120)
	gu := models.SyncHistory{Source: "gu", Priority: 0}.Record(at.Add(time.Hour), 80)

	for _, h := range []models.SyncHistory{uniqlo, gu} {
		if err := s.Put(ctx, h); err != nil {
			t.Fatalf("Put(%s) error = %v", h.Source, err)
		}
	}

	got, ok, err := s.Get(ctx, "uniqlo")
	if err != nil || !ok {
		t.Fatalf("Get(uniqlo) = ok %v, err %v", ok, err)
	}
	if !got.LastSyncedAt.Equal(at) || got.LastSyncedCount != 120 || got.CumulativeSynced != 120 || got.TargetCount != 500 {
		t.Errorf("Get(uniqlo) = %+v", got)
	}

	uniqlo = uniqlo.Record(at.Add(48*time.Hour), 30)
	if err := s.Put(ctx, uniqlo); err != nil {
		t.Fatalf("Put(update) error = %v", err)
	}
	got, _, _ = s.Get(ctx, "uniqlo")
	if got.CumulativeSynced != 150 || got.LastSyncedCount != 30 {
		t.Errorf("after update = %+v, want cumulative 150, last 30", got)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 || all[0].Source != "gu" || all[1].Source != "uniqlo" {
		t.Errorf("All() = %+v, want gu then uniqlo", all)
	}

	if err := s.Put(ctx, models.SyncHistory{}); err == nil {
		t.Error("Put() without source should fail")
	}

	if _, ok, err := s.LastRun(ctx); err != nil || ok {
		t.Fatalf("LastRun(empty) = ok %v, err %v; want false, nil", ok, err)
	}
	for _, run := range []string{`{"run_id":"r1"}`, `{"run_id":"r2"}`} {
		if err := s.PutLastRun(ctx, []byte(run)); err != nil {
			t.Fatalf("PutLastRun() error = %v", err)
		}
	}
	data, ok, err := s.LastRun(ctx)
	if err != nil || !ok || string(data) != `{"run_id":"r2"}` {
		t.Errorf("LastRun() = %s, ok %v, err %v", data, ok, err)
	}
	if all, _ := s.All(ctx); len(all) != 2 {
		t.Errorf("All() after PutLastRun = %d records, want 2", len(all))
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Close()
	if _, _, err := s.Get(t.Context(), "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after Close error = %v, want ErrClosed", err)
	}
	if err := s.Put(t.Context(), models.SyncHistory{Source: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Put() after Close error = %v, want ErrClosed", err)
	}
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger(filepath.Join(t.TempDir(), "history"), false)
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s, err := OpenBadger(dir, true)
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	if err := s.Put(t.Context(), models.SyncHistory{Source: "muji"}.Record(at, 42)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.PutLastRun(t.Context(), []byte(`{"run_id":"r9"}`)); err != nil {
		t.Fatalf("PutLastRun() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = OpenBadger(dir, true)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	got, ok, err := s.Get(t.Context(), "muji")
	if err != nil || !ok {
		t.Fatalf("Get() after reopen = ok %v, err %v", ok, err)
	}
	if got.LastSyncedCount != 42 || !got.LastSyncedAt.Equal(at) {
		t.Errorf("Get() after reopen = %+v", got)
	}
	if data, ok, err := s.LastRun(t.Context()); err != nil || !ok || string(data) != `{"run_id":"r9"}` {
		t.Errorf("LastRun() after reopen = %s, ok %v, err %v", data, ok, err)
	}
}

func TestBadgerStore_RunGC(t *testing.T) {
	s, err := OpenBadger(filepath.Join(t.TempDir(), "history"), false)
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	defer s.Close()

	for _, src := range []string{"gu", "muji", "uniqlo"} {
		if err := s.Put(t.Context(), models.SyncHistory{Source: src}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	if err := s.RunGC(0.5); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(config.HistoryConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open(in-memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(in-memory) = %T, want *MemoryStore", s)
	}
	_ = s.Close()

	if _, err := Open(config.HistoryConfig{}); err == nil {
		t.Error("Open() without path should fail")
	}
}

func TestGetOrNew(t *testing.T) {
	s := NewMemoryStore()
	src := config.SourceConfig{Name: "zara", Priority: 2, TargetActiveCount: 250}

	h, err := GetOrNew(t.Context(), s, src)
	if err != nil {
		t.Fatalf("GetOrNew() error = %v", err)
	}
	if h.Source != "zara" || !h.NeverSynced() || h.TargetCount != 250 || h.Priority != 2 {
		t.Errorf("GetOrNew(new) = %+v", h)
	}

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = s.Put(t.Context(), models.SyncHistory{Source: "zara", TargetCount: 10}.Record(at, 5))
	src.TargetActiveCount = 300
	h, _ = GetOrNew(t.Context(), s, src)
	if h.CumulativeSynced != 5 || h.TargetCount != 300 {
		t.Errorf("GetOrNew(existing) = %+v, want cumulative 5 and refreshed target 300", h)
	}
}
