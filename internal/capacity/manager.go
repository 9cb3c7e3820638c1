// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package capacity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/store"
)

// ErrCapacityCritical reports that eviction could not bring the catalog below
// its target. It is a warning; the run still succeeds.
var ErrCapacityCritical = errors.New("capacity still critical after eviction")

// Store is the part of the product store the manager uses.
type Store interface {
	Count(ctx context.Context, f store.Filter) (int, error)
	List(ctx context.Context, q store.Query) ([]*models.Product, error)
	DeleteInactiveOlderThan(ctx context.Context, cutoff time.Time, limit int) (int, error)
	DeleteByPriorityAtLeast(ctx context.Context, cutoff, limit int) (int, error)
	DeleteInactive(ctx context.Context, limit int) (int, error)
	DeleteLowestQualityActive(ctx context.Context, limit int) (int, error)
}

// Manager assesses catalog capacity and evicts products when it is critical.
type Manager struct {
	store  Store
	cfg    config.CapacityConfig
	dryRun bool
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for the staleness cutoff.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the manager's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager over s.
func NewManager(s Store, cfg config.CapacityConfig, opts ...Option) *Manager {
	m := &Manager{
		store:  s,
		cfg:    cfg,
		now:    time.Now,
		logger: logging.WithComponent("capacity"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithDryRun returns a copy of m that counts eviction candidates without deleting.
func (m *Manager) WithDryRun(dry bool) *Manager {
	c := *m
	c.dryRun = dry
	return &c
}

// Config returns the capacity configuration.
func (m *Manager) Config() config.CapacityConfig { return m.cfg }

// Assess counts the catalog and classifies it.
func (m *Manager) Assess(ctx context.Context) (Status, error) {
	total, err := m.store.Count(ctx, store.Filter{})
	if err != nil {
		return Status{}, fmt.Errorf("count products: %w", err)
	}
	active, err := m.store.Count(ctx, store.Filter{Active: store.Bool(true)})
	if err != nil {
		return Status{}, fmt.Errorf("count active products: %w", err)
	}
	st := newStatus(total, active, m.cfg)
	metrics.UpdateCapacity(st.Total, st.Active, st.Usage, int(st.State))
	return st, nil
}

// Target is the product count eviction aims for. It stays below
// CriticalCount when that threshold is set.
func (m *Manager) Target() int {
	target := int(m.cfg.TargetRatio * float64(m.cfg.MaxProducts))
	if m.cfg.CriticalCount > 0 {
		target = min(target, m.cfg.CriticalCount-1)
	}
	return max(target, 0)
}
