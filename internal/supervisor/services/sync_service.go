// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/pipeline"
)

// Runner executes one sync run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (*pipeline.RunSummary, error)
}

// SyncSchedule configures SyncService.
type SyncSchedule struct {
	// Interval between scheduled runs; <= 0 disables the ticker.
	Interval     time.Duration
	RunOnStartup bool
}

// SyncService runs the pipeline on a fixed interval as a supervised service.
// Run failures are logged and never restart the service; the next tick
// simply tries again.
type SyncService struct {
	runner   Runner
	schedule SyncSchedule
	logger   zerolog.Logger
	name     string

	// startupDone survives suture restarts so the startup run happens once
	// per process.
	startupDone atomic.Bool
}

// NewSyncService creates the wrapper.
func NewSyncService(runner Runner, schedule SyncSchedule) *SyncService {
	return &SyncService{
		runner:   runner,
		schedule: schedule,
		logger:   logging.WithComponent("sync-scheduler"),
		name:     "sync-scheduler",
	}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if s.schedule.RunOnStartup && s.startupDone.CompareAndSwap(false, true) {
		s.runOnce(ctx, pipeline.TriggerStartup)
	}

	if s.schedule.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.schedule.Interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.schedule.Interval).Msg("Sync scheduler started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx, pipeline.TriggerSchedule)
		}
	}
}

func (s *SyncService) runOnce(ctx context.Context, trigger string) {
	sum, err := s.runner.Run(ctx, pipeline.RunOptions{Trigger: trigger})
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		s.logger.Info().Str("trigger", trigger).Msg("Skipping scheduled sync: a run is already in progress")
	case err != nil && ctx.Err() != nil:
		s.logger.Info().Str("trigger", trigger).Msg("Sync run interrupted by shutdown")
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn().Str("trigger", trigger).Msg("Sync run timed out")
	case err != nil:
		s.logger.Error().Err(err).Str("trigger", trigger).Msg("Sync run failed")
	default:
		s.logger.Debug().
			Str("trigger", trigger).
			Str("run_id", sum.RunID).
			Int("saved", sum.Saved()).
			Int("failures", len(sum.Failures)).
			Msg("Scheduled sync finished")
	}
}

// String implements fmt.Stringer.
func (s *SyncService) String() string {
	return s.name
}
