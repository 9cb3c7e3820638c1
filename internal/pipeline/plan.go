// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/atelier/internal/capacity"
	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/history"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/rotation"
)

// Growth factors for the progressive volume policy.
const (
	// notDueShare is the share of InitialProducts refreshed between rotations.
	notDueShare = 0.2
	// nearDueShare of the rotation period makes a source slightly more urgent.
	nearDueShare = 0.7
)

// SourcePlan is the ingestion plan for one source.
type SourcePlan struct {
	Source            config.SourceConfig
	History           models.SyncHistory
	Due               bool
	EffectivePriority int
	// Target is how many valid products to ingest; 0 skips the source.
	Target int
}

// SelectSources filters the enabled sources by mode and, when names is not
// empty, by name. Table order is preserved.
func SelectSources(cfg *config.Config, mode string, names []string) []config.SourceConfig {
	sources := cfg.EnabledSources()
	switch mode {
	case config.ModeMVP:
		sources = slices.DeleteFunc(sources, func(s config.SourceConfig) bool { return s.Priority > 2 })
	case config.ModeTest:
		sources = sources[:min(max(cfg.Sync.TestSourceLimit, 1), len(sources))]
	}
	if len(names) > 0 {
		sources = slices.DeleteFunc(sources, func(s config.SourceConfig) bool { return !slices.Contains(names, s.Name) })
	}
	return sources
}

// EffectivePriority lowers (makes more urgent) the priority of sources that
// are due or nearly due. Sources that never synced count as nearly due.
func EffectivePriority(h models.SyncHistory, src config.SourceConfig, now time.Time) int {
	p := src.Priority
	switch {
	case h.NeverSynced():
		p--
	case rotation.Due(h, src, now):
		p -= 2
	case h.DaysSince(now) >= nearDueShare*float64(src.RotationPeriodDays):
		p--
	}
	return max(p, 0)
}

// warningFactor scales volume in the Warning state; less important sources
// shrink more.
func warningFactor(priority int) float64 {
	switch {
	case priority > 5:
		return 0.2
	case priority > 3:
		return 0.3
	case priority > 1:
		return 0.5
	default:
		return 0.7
	}
}

// TargetVolume sizes a source's fetch for this run.
//
// A due source grows progressively: its cumulative total plus InitialProducts,
// capped at MaxStoredCount. A source between rotations only refreshes a fifth
// of InitialProducts. The result is scaled by the capacity state (and by
// priority class in Warning) and floored at minProducts. Critical yields 0.
func TargetVolume(h models.SyncHistory, src config.SourceConfig, now time.Time, st capacity.Status, minProducts int) int {
	if st.State == capacity.Critical || st.Scale <= 0 {
		return 0
	}

	var base int
	if rotation.Due(h, src, now) {
		base = h.CumulativeSynced + src.InitialProducts
		if src.MaxStoredCount > 0 {
			base = min(base, src.MaxStoredCount)
		}
	} else {
		base = int(float64(src.InitialProducts) * notDueShare)
	}

	v := float64(base) * st.Scale
	if st.State == capacity.Warning {
		v *= warningFactor(src.Priority)
	}
	return max(int(v), minProducts)
}

// plan builds the ordered source plans for a run.
func (p *Pipeline) plan(ctx context.Context, sources []config.SourceConfig, st capacity.Status) ([]*SourcePlan, error) {
	now := p.now()
	plans := make([]*SourcePlan, 0, len(sources))
	for _, src := range sources {
		h, err := history.GetOrNew(ctx, p.history, src)
		if err != nil {
			return nil, fmt.Errorf("read history for %s: %w", src.Name, err)
		}
		plans = append(plans, &SourcePlan{
			Source:            src,
			History:           h,
			Due:               rotation.Due(h, src, now),
			EffectivePriority: EffectivePriority(h, src, now),
			Target:            TargetVolume(h, src, now, st, p.cfg.Sync.MinProducts),
		})
	}
	slices.SortStableFunc(plans, func(a, b *SourcePlan) int {
		if a.EffectivePriority != b.EffectivePriority {
			return a.EffectivePriority - b.EffectivePriority
		}
		return a.Source.Priority - b.Source.Priority
	})
	return plans, nil
}
