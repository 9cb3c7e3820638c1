// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeGC struct {
	ratios chan float64
	err    error
}

func (f *fakeGC) RunGC(ratio float64) error {
	f.ratios <- ratio
	return f.err
}

func TestHistoryGCService(t *testing.T) {
	gc := &fakeGC{ratios: make(chan float64, 16), err: errors.New("rejected")}
	svc := NewHistoryGCService(gc, 5*time.Millisecond, 0.5)
	if svc.String() != "history-gc" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	// A failing GC keeps the ticker running.
	for i := 0; i < 2; i++ {
		select {
		case r := <-gc.ratios:
			if r != 0.5 {
				t.Errorf("ratio = %v, want 0.5", r)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("GC was not run")
		}
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestNewHistoryGCService_DefaultInterval(t *testing.T) {
	if svc := NewHistoryGCService(&fakeGC{}, 0, 0.5); svc.interval != time.Hour {
		t.Errorf("interval = %v, want 1h", svc.interval)
	}
}
