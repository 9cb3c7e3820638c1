// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package pipeline

import (
	"time"

	"github.com/tomtom215/atelier/internal/capacity"
	"github.com/tomtom215/atelier/internal/rotation"
)

// Source statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Skip reasons.
const (
	SkipCanceled         = "canceled"
	SkipCapacityCritical = "capacity_critical"
	SkipNoTarget         = "no_target"
)

// WarningCapacityCritical is added to RunSummary.Warnings when eviction could
// not bring the catalog below its target.
const WarningCapacityCritical = "CapacityExceededCritical"

// Stages, as reported in SourceFailure.
const (
	StageIngest = "ingest"
	StageRotate = "rotate"
	StageEvict  = "evict"
)

// SourceSummary holds one source's counters for a run.
type SourceSummary struct {
	Source            string `json:"source"`
	Priority          int    `json:"priority"`
	EffectivePriority int    `json:"effective_priority"`
	Due               bool   `json:"due"`
	Target            int    `json:"target"`

	Fetched      int `json:"fetched"`
	Filtered     int `json:"filtered"`
	Invalid      int `json:"invalid"`
	Inserted     int `json:"inserted"`
	Updated      int `json:"updated"`
	Skipped      int `json:"skipped"`
	WriteErrors  int `json:"write_errors"`
	PagesFetched int `json:"pages_fetched"`
	PagesSkipped int `json:"pages_skipped"`

	// StoppedCritical is true when a mid-run capacity check ended ingestion early.
	StoppedCritical bool   `json:"stopped_critical,omitempty"`
	Status          string `json:"status"`
	SkipReason      string `json:"skip_reason,omitempty"`
	Err             string `json:"error,omitempty"`
}

// Synced is the number of products written (or that would be, in a dry run).
func (s *SourceSummary) Synced() int {
	return s.Inserted + s.Updated
}

// SourceFailure records a source-level error.
type SourceFailure struct {
	Source string `json:"source"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
}

// RunSummary is the structured result of one run.
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Trigger    string        `json:"trigger"`
	Mode       string        `json:"mode"`
	DryRun     bool          `json:"dry_run"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`

	CapacityBefore capacity.Status `json:"capacity_before"`
	CapacityAfter  capacity.Status `json:"capacity_after"`

	Sources  []*SourceSummary         `json:"sources"`
	Rotation []*rotation.Result       `json:"rotation,omitempty"`
	Eviction *capacity.EvictionReport `json:"eviction,omitempty"`
	Failures []SourceFailure          `json:"failures,omitempty"`
	Warnings []string                 `json:"warnings,omitempty"`
}

// Saved totals Synced over all sources.
func (r *RunSummary) Saved() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Synced()
	}
	return n
}

// Source returns the summary for name, or nil.
func (r *RunSummary) Source(name string) *SourceSummary {
	for _, s := range r.Sources {
		if s.Source == name {
			return s
		}
	}
	return nil
}

func (r *RunSummary) fail(source, stage string, err error) {
	r.Failures = append(r.Failures, SourceFailure{Source: source, Stage: stage, Error: err.Error()})
}
