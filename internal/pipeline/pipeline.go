// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/atelier/internal/capacity"
	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/dedup"
	"github.com/tomtom215/atelier/internal/fetcher"
	"github.com/tomtom215/atelier/internal/history"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/normalize"
	"github.com/tomtom215/atelier/internal/rotation"
	"github.com/tomtom215/atelier/internal/scoring"
	"github.com/tomtom215/atelier/internal/store"
)

// ErrRunInProgress is returned by Run while another run is executing.
var ErrRunInProgress = errors.New("a sync run is already in progress")

// Triggers.
const (
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
	TriggerManual   = "manual"
)

// RunOptions overrides the configured run settings. Zero values fall back to
// config.SyncConfig.
type RunOptions struct {
	Mode    string   `json:"mode,omitempty" validate:"omitempty,oneof=mvp extended test"`
	Sources []string `json:"sources,omitempty" validate:"omitempty,dive,required"`
	DryRun  bool     `json:"dry_run,omitempty"`
	Trigger string   `json:"-"`
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Store      store.ProductStore
	History    history.Store
	Fetcher    fetcher.Fetcher
	Normalizer *normalize.Normalizer
	Scorer     *scoring.Scorer
	Capacity   *capacity.Manager
	Rotation   *rotation.Scheduler
	// Logger defaults to the global logger.
	Logger *zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs sync cycles. At most one run executes at a time.
type Pipeline struct {
	cfg        *config.Config
	store      store.ProductStore
	history    history.Store
	fetcher    fetcher.Fetcher
	normalizer *normalize.Normalizer
	scorer     *scoring.Scorer
	resolver   *dedup.Resolver
	capacity   *capacity.Manager
	rotation   *rotation.Scheduler
	log        *logging.SyncLogger
	now        func() time.Time

	running atomic.Bool
	mu      sync.RWMutex
	last    *RunSummary

	onRunCompleted func(*RunSummary)
}

// New creates a Pipeline. Missing optional collaborators are built from cfg.
func New(cfg *config.Config, d Deps) *Pipeline {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	logger := logging.Logger()
	if d.Logger != nil {
		logger = *d.Logger
	}
	p := &Pipeline{
		cfg:        cfg,
		store:      d.Store,
		history:    d.History,
		fetcher:    d.Fetcher,
		normalizer: d.Normalizer,
		scorer:     d.Scorer,
		resolver:   dedup.NewResolver(d.Store),
		capacity:   d.Capacity,
		rotation:   d.Rotation,
		log:        logging.NewSyncLoggerWithLogger(logger),
		now:        now,
	}
	if p.normalizer == nil {
		p.normalizer = normalize.New(cfg.Normalize).WithClock(now)
	}
	if p.scorer == nil {
		p.scorer = scoring.New(cfg.Scoring).WithClock(now)
	}
	if p.capacity == nil {
		p.capacity = capacity.NewManager(d.Store, cfg.Capacity, capacity.WithClock(now), capacity.WithLogger(logger.With().Str("component", "capacity").Logger()))
	}
	if p.rotation == nil {
		p.rotation = rotation.NewScheduler(d.Store, d.History, rotation.WithClock(now), rotation.WithLogger(logger.With().Str("component", "rotation").Logger()))
	}
	return p
}

// SetOnRunCompleted registers fn to be called after every finished run,
// including failed and canceled ones. It must be set before the first run.
func (p *Pipeline) SetOnRunCompleted(fn func(*RunSummary)) {
	p.onRunCompleted = fn
}

// Running reports whether a run is executing.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Last returns the summary of the most recent finished run, or nil. Before
// the first run of this process it falls back to the summary persisted in
// the history store.
func (p *Pipeline) Last() *RunSummary {
	p.mu.RLock()
	last := p.last
	p.mu.RUnlock()
	if last != nil || p.history == nil {
		return last
	}

	ctx := context.Background()
	data, ok, err := p.history.LastRun(ctx)
	if err != nil {
		p.log.SummaryLoadFailed(ctx, err)
		return nil
	}
	if !ok {
		return nil
	}
	var sum RunSummary
	if err := json.Unmarshal(data, &sum); err != nil {
		p.log.SummaryLoadFailed(ctx, err)
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		p.last = &sum
	}
	return p.last
}

// persist stores sum as the latest run. Failures are logged only.
func (p *Pipeline) persist(ctx context.Context, sum *RunSummary) {
	if p.history == nil {
		return
	}
	data, err := json.Marshal(sum)
	if err == nil {
		err = p.history.PutLastRun(context.WithoutCancel(ctx), data)
	}
	if err != nil {
		p.log.SummaryPersistFailed(ctx, err)
	}
}

// Run executes plan, ingest, rotate and evict in order. Source-level failures
// are reported in the summary; the returned error is reserved for failures
// that stop the whole run (cancellation, an unreadable store).
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)

	if p.cfg.Sync.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Sync.RunTimeout)
		defer cancel()
	}

	sum := &RunSummary{
		RunID:     logging.GenerateRunID(),
		Trigger:   opts.Trigger,
		Mode:      opts.Mode,
		DryRun:    opts.DryRun || p.cfg.Sync.DryRun,
		StartedAt: p.now(),
	}
	if sum.Mode == "" {
		sum.Mode = p.cfg.Sync.Mode
	}
	if sum.Trigger == "" {
		sum.Trigger = TriggerManual
	}
	names := opts.Sources
	if len(names) == 0 {
		names = p.cfg.Sync.Sources
	}
	ctx = logging.ContextWithRunID(ctx, sum.RunID)

	err := p.run(ctx, sum, names)

	sum.FinishedAt = p.now()
	sum.Duration = sum.FinishedAt.Sub(sum.StartedAt)
	metrics.RecordSyncRun(sum.Duration, len(sum.Failures), err)
	p.log.RunFinished(ctx, sum.Saved(), len(sum.Failures), sum.Duration)

	p.mu.Lock()
	p.last = sum
	p.mu.Unlock()
	p.persist(ctx, sum)

	if p.onRunCompleted != nil {
		p.onRunCompleted(sum)
	}
	return sum, err
}

func (p *Pipeline) run(ctx context.Context, sum *RunSummary, names []string) error {
	capMgr := p.capacity.WithDryRun(sum.DryRun)

	before, err := capMgr.Assess(ctx)
	if err != nil {
		return fmt.Errorf("assess capacity: %w", err)
	}
	sum.CapacityBefore = before
	sum.CapacityAfter = before

	// plan
	sources := SelectSources(p.cfg, sum.Mode, names)
	plans, err := p.plan(ctx, sources, before)
	if err != nil {
		return err
	}
	p.log.RunStarted(ctx, sum.Mode, len(plans), sum.DryRun)

	// ingest
	sum.Sources = make([]*SourceSummary, len(plans))
	var g errgroup.Group
	g.SetLimit(p.cfg.Sync.Concurrency)
	for i, sp := range plans {
		ss := &SourceSummary{
			Source:            sp.Source.Name,
			Priority:          sp.Source.Priority,
			EffectivePriority: sp.EffectivePriority,
			Due:               sp.Due,
			Target:            sp.Target,
		}
		sum.Sources[i] = ss
		switch {
		case before.State == capacity.Critical:
			ss.Status, ss.SkipReason = StatusSkipped, SkipCapacityCritical
			continue
		case sp.Target <= 0:
			ss.Status, ss.SkipReason = StatusSkipped, SkipNoTarget
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				ss.Status, ss.SkipReason = StatusSkipped, SkipCanceled
				return nil
			}
			p.ingestSource(ctx, sp, ss, sum.DryRun)
			return nil
		})
	}
	_ = g.Wait()

	synced := make(map[string]int, len(plans))
	for _, ss := range sum.Sources {
		if ss.Status == StatusFailed {
			sum.Failures = append(sum.Failures, SourceFailure{Source: ss.Source, Stage: StageIngest, Error: ss.Err})
		}
		synced[ss.Source] = ss.Synced()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// rotate
	rot := p.rotation.WithDryRun(sum.DryRun)
	planned := make([]config.SourceConfig, len(plans))
	for i, sp := range plans {
		planned[i] = sp.Source
	}
	results, err := rot.RotateAll(ctx, planned, synced)
	sum.Rotation = results
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		sum.fail("", StageRotate, err)
	}

	// evict
	report, err := capMgr.Evict(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		sum.fail("", StageEvict, err)
	} else {
		sum.Eviction = report
		if errors.Is(report.Err(), capacity.ErrCapacityCritical) {
			sum.Warnings = append(sum.Warnings, WarningCapacityCritical)
		}
	}

	if after, err := capMgr.Assess(ctx); err == nil {
		sum.CapacityAfter = after
	}
	return nil
}
