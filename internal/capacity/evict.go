// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package capacity

import (
	"context"
	"time"

	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/store"
)

// Eviction tiers, in the order they run.
const (
	TierStaleInactive = "stale_inactive"
	TierLowPriority   = "low_priority"
	TierInactive      = "inactive"
	TierLowQuality    = "low_quality"
)

// TierResult is what one tier removed (or would remove, in a dry run).
type TierResult struct {
	Tier     string `json:"tier"`
	Deleted  int    `json:"deleted"`
	Failures int    `json:"failures,omitempty"`
}

// EvictionReport summarizes an eviction pass.
type EvictionReport struct {
	Before Status `json:"before"`
	After  Status `json:"after"`
	Target int    `json:"target"`
	// Needed is how many products had to go, after the per-run cap.
	Needed        int          `json:"needed"`
	Deleted       int          `json:"deleted"`
	BatchFailures int          `json:"batch_failures,omitempty"`
	Tiers         []TierResult `json:"tiers,omitempty"`
	DryRun        bool         `json:"dry_run"`
	// Ran is false when the catalog was not critical.
	Ran           bool `json:"ran"`
	StillCritical bool `json:"still_critical"`
}

// Err returns ErrCapacityCritical when the pass left the catalog Critical.
func (r *EvictionReport) Err() error {
	if r != nil && r.StillCritical {
		return ErrCapacityCritical
	}
	return nil
}

type tier struct {
	name   string
	remove func(ctx context.Context, limit int) (int, error)
	query  func(limit int) store.Query
}

func (m *Manager) tiers() []tier {
	cutoff := m.now().Add(-m.cfg.StaleAfter)
	return []tier{
		{
			name: TierStaleInactive,
			remove: func(ctx context.Context, n int) (int, error) {
				return m.store.DeleteInactiveOlderThan(ctx, cutoff, n)
			},
			query: func(n int) store.Query { return store.StaleInactiveQuery(cutoff, n) },
		},
		{
			name: TierLowPriority,
			remove: func(ctx context.Context, n int) (int, error) {
				return m.store.DeleteByPriorityAtLeast(ctx, m.cfg.LowPriorityCutoff, n)
			},
			query: func(n int) store.Query { return store.LowPriorityQuery(m.cfg.LowPriorityCutoff, n) },
		},
		{name: TierInactive, remove: m.store.DeleteInactive, query: store.InactiveQuery},
		{name: TierLowQuality, remove: m.store.DeleteLowestQualityActive, query: store.LowestQualityActiveQuery},
	}
}

// Evict deletes products tier by tier until the catalog reaches the target
// ratio. It does nothing unless the catalog is Critical. Batch failures are
// logged and counted; the tier is abandoned and the next one runs.
func (m *Manager) Evict(ctx context.Context) (*EvictionReport, error) {
	before, err := m.Assess(ctx)
	if err != nil {
		return nil, err
	}
	report := &EvictionReport{Before: before, After: before, Target: m.Target(), DryRun: m.dryRun}
	if before.State != Critical {
		return report, nil
	}
	report.Ran = true

	need := max(before.Total-report.Target, 0)
	if m.cfg.MaxDeletePerRun > 0 {
		need = min(need, m.cfg.MaxDeletePerRun)
	}
	report.Needed = need

	m.logger.Warn().
		Int("total", before.Total).
		Int("target", report.Target).
		Int("to_delete", need).
		Bool("dry_run", m.dryRun).
		Msg("Capacity critical, evicting products")

	if m.dryRun {
		err = m.planEviction(ctx, report, need)
	} else {
		err = m.runEviction(ctx, report, need)
	}
	if err != nil {
		return report, err
	}

	if m.dryRun {
		total := before.Total - report.Deleted
		report.After = newStatus(total, before.Active, m.cfg)
	} else if report.After, err = m.Assess(ctx); err != nil {
		return report, err
	}
	report.StillCritical = report.After.State == Critical

	ev := m.logger.Info()
	if report.StillCritical {
		ev = m.logger.Warn().Err(ErrCapacityCritical)
	}
	ev.Int("deleted", report.Deleted).
		Int("remaining", report.After.Total).
		Int("batch_failures", report.BatchFailures).
		Msg("Eviction finished")
	return report, nil
}

func (m *Manager) runEviction(ctx context.Context, report *EvictionReport, need int) error {
	batch := max(m.cfg.DeleteBatchSize, 1)
	for _, t := range m.tiers() {
		if need <= 0 {
			break
		}
		res := TierResult{Tier: t.name}
		for need > 0 {
			if err := ctx.Err(); err != nil {
				report.Tiers = append(report.Tiers, res)
				return err
			}
			start := time.Now()
			n, err := t.remove(ctx, min(batch, need))
			if err != nil {
				res.Failures++
				report.BatchFailures++
				m.logger.Error().Err(err).Str("tier", t.name).Msg("Eviction batch failed")
				break
			}
			if n == 0 {
				break
			}
			m.logger.Debug().Str("tier", t.name).Int("deleted", n).Dur("took", time.Since(start)).Msg("Eviction batch")
			res.Deleted += n
			report.Deleted += n
			need -= n
		}
		metrics.RecordEviction(t.name, res.Deleted)
		report.Tiers = append(report.Tiers, res)
	}
	return nil
}

// planEviction lists what runEviction would delete. Products already counted
// by an earlier tier are excluded so tiers do not double count.
func (m *Manager) planEviction(ctx context.Context, report *EvictionReport, need int) error {
	counted := make(map[string]struct{}, need)
	for _, t := range m.tiers() {
		if need <= 0 {
			break
		}
		candidates, err := m.store.List(ctx, t.query(need+len(counted)))
		if err != nil {
			return err
		}
		res := TierResult{Tier: t.name}
		for _, p := range candidates {
			if res.Deleted == need {
				break
			}
			if _, dup := counted[p.ID]; dup {
				continue
			}
			counted[p.ID] = struct{}{}
			res.Deleted++
		}
		need -= res.Deleted
		report.Deleted += res.Deleted
		report.Tiers = append(report.Tiers, res)
	}
	return nil
}
