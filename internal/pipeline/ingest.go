// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/atelier/internal/capacity"
	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/dedup"
	"github.com/tomtom215/atelier/internal/fetcher"
	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/normalize"
)

// errAbortSource wraps the error that ended a source early.
var errAbortSource = errors.New("source aborted")

// ingestSource fetches, normalizes, deduplicates, scores and writes one
// source. It records everything in ss and never returns an error: a source
// failure is the source's status.
func (p *Pipeline) ingestSource(ctx context.Context, sp *SourcePlan, ss *SourceSummary, dryRun bool) {
	src := sp.Source
	p.log.SourceStarted(ctx, src.Name, sp.Target)

	err := p.fetchPages(ctx, sp, ss, dryRun)

	metrics.RecordSourceOutcome(src.Name, ss.Fetched, ss.Inserted, ss.Updated, ss.Skipped)
	switch {
	case err == nil:
		ss.Status = StatusOK
		p.log.SourceFinished(ctx, src.Name, ss.Fetched, ss.Inserted, ss.Updated, ss.Skipped)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		ss.Status, ss.SkipReason = StatusSkipped, SkipCanceled
		ss.Err = err.Error()
	default:
		ss.Status = StatusFailed
		ss.Err = err.Error()
		metrics.RecordSourceFailure(src.Name, err)
		p.log.SourceFailed(ctx, src.Name, err)
	}
}

func (p *Pipeline) fetchPages(ctx context.Context, sp *SourcePlan, ss *SourceSummary, dryRun bool) error {
	src := sp.Source
	q := fetcher.QueryFor(src, p.cfg.Rakuten)
	batchSize := p.cfg.Sync.BatchSize
	maxPages := min(p.cfg.Sync.MaxPagesPerSource, fetcher.MaxPage)

	pending := make([]*models.Product, 0, batchSize)
	// flush writes even after cancellation so the in-flight batch completes.
	flush := func() {
		if len(pending) == 0 {
			return
		}
		p.writeBatch(context.WithoutCancel(ctx), src, pending, ss, dryRun)
		pending = pending[:0]
	}
	defer flush()

	accepted := 0
	failures := 0
	for page := 1; page <= maxPages && accepted < sp.Target; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		pg, err := p.fetcher.Fetch(ctx, q, page)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, fetcher.ErrRateLimitExceeded),
				errors.Is(err, fetcher.ErrRateLimitWaitExceeded),
				errors.Is(err, fetcher.ErrCircuitOpen):
				return fmt.Errorf("%w on page %d: %w", errAbortSource, page, err)
			}
			failures++
			ss.PagesSkipped++
			p.log.PageSkipped(ctx, src.Name, page, err)
			if failures >= p.cfg.Sync.MaxPageFailures {
				return fmt.Errorf("%w after %d consecutive page failures: %w", errAbortSource, failures, err)
			}
			continue
		}
		failures = 0
		ss.PagesFetched++

		for i := range pg.Items {
			if accepted >= sp.Target {
				break
			}
			ss.Fetched++
			prod, err := p.normalizer.Normalize(&pg.Items[i], src)
			if err != nil {
				p.dropped(ctx, src.Name, pg.Items[i].ItemCode, err, ss)
				continue
			}
			accepted++
			pending = append(pending, prod)
			if len(pending) >= batchSize {
				flush()
			}
		}

		if !pg.HasMore {
			break
		}
		if page%p.cfg.Sync.AssessEvery == 0 && p.turnedCritical(ctx, src.Name) {
			ss.StoppedCritical = true
			break
		}
	}
	return nil
}

func (p *Pipeline) dropped(ctx context.Context, source, code string, err error, ss *SourceSummary) {
	reason := normalize.DropReason(err)
	if errors.Is(err, normalize.ErrFilteredItem) {
		ss.Filtered++
	} else {
		ss.Invalid++
	}
	metrics.RecordDropped(reason)
	p.log.ItemDropped(ctx, source, code, reason)
}

// turnedCritical re-assesses capacity mid-source. An assessment error keeps
// the source running.
func (p *Pipeline) turnedCritical(ctx context.Context, source string) bool {
	st, err := p.capacity.Assess(ctx)
	if err != nil {
		return false
	}
	if st.State == capacity.Critical {
		p.log.SourceFailed(ctx, source, fmt.Errorf("capacity critical at %.0f%% usage, stopping growth", st.Usage*100))
		return true
	}
	return false
}

// writeBatch deduplicates, scores and stores one batch. A failed batch is
// logged and counted; the caller continues with the next one.
func (p *Pipeline) writeBatch(ctx context.Context, src config.SourceConfig, batch []*models.Product, ss *SourceSummary, dryRun bool) {
	plan, err := p.resolver.Batch(ctx, batch)
	if err != nil {
		ss.WriteErrors++
		p.log.BatchFailed(ctx, src.Name, len(batch), err)
		return
	}

	for _, prod := range plan.Upserts {
		p.scorer.Score(prod, src, nil)
	}

	if !dryRun {
		if err := p.applyPlan(ctx, plan); err != nil {
			ss.WriteErrors++
			p.log.BatchFailed(ctx, src.Name, len(batch), err)
			return
		}
	}
	ss.Inserted += plan.Inserted
	ss.Updated += plan.Updated
	ss.Skipped += plan.Skipped
}

func (p *Pipeline) applyPlan(ctx context.Context, plan *dedup.Plan) error {
	if len(plan.Upserts) > 0 {
		if _, err := p.store.Upsert(ctx, plan.Upserts); err != nil {
			return err
		}
	}
	now := p.now()
	for _, u := range plan.PriceUpdates {
		if err := p.store.UpdatePrice(ctx, u.ID, u.Price, now); err != nil {
			return fmt.Errorf("update price of %s: %w", u.ID, err)
		}
	}
	if len(plan.Touches) > 0 {
		if _, err := p.store.Touch(ctx, plan.Touches, now); err != nil {
			return err
		}
	}
	return nil
}
