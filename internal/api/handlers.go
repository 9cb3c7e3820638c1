// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/atelier/internal/cache"
	"github.com/tomtom215/atelier/internal/capacity"
	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/diversity"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/pipeline"
	"github.com/tomtom215/atelier/internal/scoring"
	"github.com/tomtom215/atelier/internal/store"
)

// ProductReader is the part of the product store the API reads.
type ProductReader interface {
	List(ctx context.Context, q store.Query) ([]*models.Product, error)
	Ping(ctx context.Context) error
}

// CapacityAssessor reports catalog capacity. Implemented by *capacity.Manager.
type CapacityAssessor interface {
	Assess(ctx context.Context) (capacity.Status, error)
}

// SyncRunner starts sync runs. Implemented by *pipeline.Pipeline.
type SyncRunner interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (*pipeline.RunSummary, error)
	Running() bool
	Last() *pipeline.RunSummary
}

// Deps are the collaborators of a Handler. Scorer and Selector are built
// from Config when nil.
type Deps struct {
	Config   *config.Config
	Store    ProductReader
	Capacity CapacityAssessor
	Sync     SyncRunner
	Scorer   *scoring.Scorer
	Selector *diversity.Selector
}

// Handler serves the API routes.
//
// Handler methods are split across files:
//   - handlers_health.go: liveness and readiness
//   - handlers_feed.go: diversified and personalized feeds
//   - handlers_capacity.go: capacity status
//   - handlers_sync.go: manual sync trigger and last run summary
type Handler struct {
	cfg       *config.Config
	store     ProductReader
	capacity  CapacityAssessor
	sync      SyncRunner
	scorer    *scoring.Scorer
	selector  *diversity.Selector
	logger    zerolog.Logger
	startTime time.Time

	// feedCache holds candidate lists until the next sync run; nil when disabled.
	feedCache *cache.Cache[[]*models.Product]

	// runCtx outlives requests; manual runs are canceled by Close.
	runCtx    context.Context
	cancelRun context.CancelFunc
	runs      sync.WaitGroup
}

// NewHandler creates a Handler.
func NewHandler(d Deps) *Handler {
	logger := logging.WithComponent("api")
	h := &Handler{
		cfg:       d.Config,
		store:     d.Store,
		capacity:  d.Capacity,
		sync:      d.Sync,
		scorer:    d.Scorer,
		selector:  d.Selector,
		logger:    logger,
		startTime: time.Now(),
	}
	if h.scorer == nil {
		h.scorer = scoring.New(d.Config.Scoring)
	}
	if h.selector == nil {
		h.selector = diversity.NewSelector(logger)
	}
	if ttl := d.Config.Server.FeedCacheTTL; ttl > 0 {
		h.feedCache = cache.New[[]*models.Product](ttl)
	}
	h.runCtx, h.cancelRun = context.WithCancel(context.Background())
	return h
}

// OnSyncCompleted drops cached feed candidates. Register it with
// pipeline.Pipeline.SetOnRunCompleted.
func (h *Handler) OnSyncCompleted(sum *pipeline.RunSummary) {
	if h.feedCache == nil {
		return
	}
	h.feedCache.Clear()
	if sum != nil {
		h.logger.Debug().Str("run_id", sum.RunID).Msg("Feed cache cleared after sync")
	}
}

// Close cancels manual sync runs started through the API and waits for them.
func (h *Handler) Close() {
	h.cancelRun()
	h.runs.Wait()
}
