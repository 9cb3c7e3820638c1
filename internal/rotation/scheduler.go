// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package rotation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/history"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/store"
)

// Store is the part of the product store rotation uses.
type Store interface {
	Count(ctx context.Context, f store.Filter) (int, error)
	List(ctx context.Context, q store.Query) ([]*models.Product, error)
	SetActive(ctx context.Context, ids []string, active bool) (int, error)
}

// Result is the outcome of one source's rotation cycle.
type Result struct {
	Source       string `json:"source"`
	ActiveBefore int    `json:"active_before"`
	ActiveAfter  int    `json:"active_after"`
	Target       int    `json:"target"`
	Activated    int    `json:"activated"`
	Deactivated  int    `json:"deactivated"`
	DryRun       bool   `json:"dry_run,omitempty"`
	// Recorded is true when the source's sync history was written.
	Recorded bool `json:"recorded"`
}

// Due reports whether src's rotation period has elapsed since h was recorded.
// A source that never synced is always due.
func Due(h models.SyncHistory, src config.SourceConfig, now time.Time) bool {
	if h.NeverSynced() {
		return true
	}
	return h.DaysSince(now) >= float64(src.RotationPeriodDays)
}

// Scheduler runs rotation cycles.
type Scheduler struct {
	store   Store
	history history.Store
	dryRun  bool
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the scheduler clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the scheduler logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler creates a Scheduler.
func NewScheduler(s Store, h history.Store, opts ...Option) *Scheduler {
	sc := &Scheduler{
		store:   s,
		history: h,
		now:     time.Now,
		logger:  logging.WithComponent("rotation"),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// WithDryRun returns a copy of s that computes cycles without mutating anything.
func (s *Scheduler) WithDryRun(dry bool) *Scheduler {
	c := *s
	c.dryRun = dry
	return &c
}

// Rotate runs one cycle for src. synced is how many products the run just
// wrote for the source; history is recorded only when it is positive so a
// source whose fetch failed stays due.
func (s *Scheduler) Rotate(ctx context.Context, src config.SourceConfig, synced int) (*Result, error) {
	res := &Result{Source: src.Name, Target: src.TargetActiveCount, DryRun: s.dryRun}

	active, err := s.store.Count(ctx, store.Filter{Source: src.Name, Active: store.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("count active products for %s: %w", src.Name, err)
	}
	res.ActiveBefore = active
	res.ActiveAfter = active

	switch {
	case active > src.TargetActiveCount:
		n, err := s.shift(ctx, store.Query{
			Filter:  store.Filter{Source: src.Name, Active: store.Bool(true)},
			OrderBy: store.OrderLastSyncedAsc,
			Limit:   active - src.TargetActiveCount,
		}, false)
		if err != nil {
			return nil, fmt.Errorf("deactivate surplus for %s: %w", src.Name, err)
		}
		res.Deactivated = n
		res.ActiveAfter -= n
	case active < src.TargetActiveCount:
		n, err := s.shift(ctx, store.Query{
			Filter:  store.Filter{Source: src.Name, Active: store.Bool(false)},
			OrderBy: store.OrderScoreDescSyncedDesc,
			Limit:   src.TargetActiveCount - active,
		}, true)
		if err != nil {
			return nil, fmt.Errorf("activate products for %s: %w", src.Name, err)
		}
		res.Activated = n
		res.ActiveAfter += n
	}

	if synced > 0 && !s.dryRun {
		h, err := history.GetOrNew(ctx, s.history, src)
		if err != nil {
			return nil, fmt.Errorf("read history for %s: %w", src.Name, err)
		}
		if err := s.history.Put(ctx, h.Record(s.now(), synced)); err != nil {
			return nil, fmt.Errorf("write history for %s: %w", src.Name, err)
		}
		res.Recorded = true
	}

	if !s.dryRun {
		metrics.RecordRotation(src.Name, res.Activated, res.Deactivated)
	}
	s.logger.Debug().
		Str("source", src.Name).
		Int("active_before", res.ActiveBefore).
		Int("target", res.Target).
		Int("activated", res.Activated).
		Int("deactivated", res.Deactivated).
		Bool("dry_run", s.dryRun).
		Msg("Rotation cycle complete")
	return res, nil
}

// shift lists q and flips the matched products to active. In a dry run it only
// counts them.
func (s *Scheduler) shift(ctx context.Context, q store.Query, active bool) (int, error) {
	products, err := s.store.List(ctx, q)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 || s.dryRun {
		return len(products), nil
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return s.store.SetActive(ctx, ids, active)
}

// RotateAll rotates each source in order. synced maps source name to the
// number of products written this run. A failing source is logged and
// skipped; the first error is returned alongside the results gathered.
func (s *Scheduler) RotateAll(ctx context.Context, sources []config.SourceConfig, synced map[string]int) ([]*Result, error) {
	results := make([]*Result, 0, len(sources))
	var firstErr error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.Rotate(ctx, src, synced[src.Name])
		if err != nil {
			s.logger.Error().Err(err).Str("source", src.Name).Msg("Rotation failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, res)
	}
	return results, firstErr
}
