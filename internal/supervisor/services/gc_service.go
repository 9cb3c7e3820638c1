// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/atelier/internal/logging"
)

// GarbageCollector reclaims store space. Satisfied by *history.BadgerStore.
type GarbageCollector interface {
	RunGC(ratio float64) error
}

// HistoryGCService runs value-log GC on a fixed interval. GC errors are
// logged; a later tick retries.
type HistoryGCService struct {
	gc       GarbageCollector
	interval time.Duration
	ratio    float64
	logger   zerolog.Logger
	name     string
}

// NewHistoryGCService creates the wrapper. A non-positive interval defaults
// to one hour.
func NewHistoryGCService(gc GarbageCollector, interval time.Duration, ratio float64) *HistoryGCService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HistoryGCService{
		gc:       gc,
		interval: interval,
		ratio:    ratio,
		logger:   logging.WithComponent("history-gc"),
		name:     "history-gc",
	}
}

// Serve implements suture.Service.
func (s *HistoryGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.gc.RunGC(s.ratio); err != nil {
				s.logger.Warn().Err(err).Msg("History GC failed")
			}
		}
	}
}

// String implements fmt.Stringer.
func (s *HistoryGCService) String() string {
	return s.name
}
