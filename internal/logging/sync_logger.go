// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SyncLogger provides domain-specific log lines for a sync run.
// Every line carries the component field and, when present, the run id.
type SyncLogger struct {
	logger zerolog.Logger
}

// NewSyncLoggerWithLogger creates a SyncLogger on top of logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSyncLoggerWithLogger(logger zerolog.Logger) *SyncLogger {
	return &SyncLogger{logger: logger.With().Str("component", "pipeline").Logger()}
}

func (s *SyncLogger) with(ctx context.Context) zerolog.Logger {
	if id := RunIDFromContext(ctx); id != "" {
		return s.logger.With().Str("run_id", id).Logger()
	}
	return s.logger
}

// RunStarted logs the start of a run.
func (s *SyncLogger) RunStarted(ctx context.Context, mode string, sources int, dryRun bool) {
	l := s.with(ctx)
	l.Info().Str("mode", mode).Int("sources", sources).Bool("dry_run", dryRun).Msg("Sync run started")
}

// RunFinished logs the end of a run.
func (s *SyncLogger) RunFinished(ctx context.Context, saved, failures int, took time.Duration) {
	l := s.with(ctx)
	l.Info().Int("saved", saved).Int("failures", failures).Dur("duration", took).Msg("Sync run finished")
}

// SourceStarted logs the start of ingestion for one source.
func (s *SyncLogger) SourceStarted(ctx context.Context, source string, target int) {
	l := s.with(ctx)
	l.Info().Str("source", source).Int("target", target).Msg("Source ingestion started")
}

// SourceFinished logs per-source counters.
func (s *SyncLogger) SourceFinished(ctx context.Context, source string, fetched, inserted, updated, skipped int) {
	l := s.with(ctx)
	l.Info().
		Str("source", source).
		Int("fetched", fetched).
		Int("inserted", inserted).
		Int("updated", updated).
		Int("skipped", skipped).
		Msg("Source ingestion finished")
}

// SourceFailed logs a source-level failure.
func (s *SyncLogger) SourceFailed(ctx context.Context, source string, err error) {
	l := s.with(ctx)
	l.Warn().Str("source", source).Err(err).Msg("Source ingestion aborted")
}

// PageSkipped logs a page that could not be fetched.
func (s *SyncLogger) PageSkipped(ctx context.Context, source string, page int, err error) {
	l := s.with(ctx)
	l.Warn().Str("source", source).Int("page", page).Err(err).Msg("Page skipped")
}

// ItemDropped logs an item rejected during normalization.
func (s *SyncLogger) ItemDropped(ctx context.Context, source, itemCode, reason string) {
	l := s.with(ctx)
	l.Debug().Str("source", source).Str("item_code", itemCode).Str("reason", reason).Msg("Item dropped")
}

// BatchFailed logs a failed store write. Batches are never dropped silently.
func (s *SyncLogger) BatchFailed(ctx context.Context, source string, size int, err error) {
	l := s.with(ctx)
	l.Error().Str("source", source).Int("batch_size", size).Err(err).Msg("Batch write failed")
}

// SummaryPersistFailed logs a run summary that could not be stored.
func (s *SyncLogger) SummaryPersistFailed(ctx context.Context, err error) {
	l := s.with(ctx)
	l.Warn().Err(err).Msg("Run summary not persisted")
}

// SummaryLoadFailed logs a persisted run summary that could not be read.
func (s *SyncLogger) SummaryLoadFailed(ctx context.Context, err error) {
	l := s.with(ctx)
	l.Warn().Err(err).Msg("Persisted run summary unreadable")
}
