// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package store

import (
	"context"
	"time"

	"github.com/tomtom215/atelier/internal/models"
)

// ProductStore persists the catalog. Implementations are safe for concurrent use
// and never hand out products that alias their internal state.
type ProductStore interface {
	// Upsert inserts or replaces products keyed on ID. CreatedAt of an existing
	// row is preserved. Returns the number of rows written.
	Upsert(ctx context.Context, products []*models.Product) (int, error)

	// Get returns ErrNotFound when id is unknown.
	Get(ctx context.Context, id string) (*models.Product, error)

	// FindActiveByTitleKey returns an active product with the same normalized
	// title and brand, or ErrNotFound.
	FindActiveByTitleKey(ctx context.Context, titleKey, brand string) (*models.Product, error)

	Touch(ctx context.Context, ids []string, at time.Time) (int, error)
	UpdatePrice(ctx context.Context, id string, price int, at time.Time) error
	SetActive(ctx context.Context, ids []string, active bool) (int, error)

	DeleteByIDs(ctx context.Context, ids []string) (int, error)
	DeleteInactiveOlderThan(ctx context.Context, cutoff time.Time, limit int) (int, error)
	DeleteByPriorityAtLeast(ctx context.Context, cutoff, limit int) (int, error)
	DeleteInactive(ctx context.Context, limit int) (int, error)
	DeleteLowestQualityActive(ctx context.Context, limit int) (int, error)

	Count(ctx context.Context, f Filter) (int, error)
	List(ctx context.Context, q Query) ([]*models.Product, error)

	Ping(ctx context.Context) error
	Close() error
}

// Filter restricts Count and List. Zero fields do not filter.
type Filter struct {
	Active *bool
	Source string
	// SyncedBefore keeps products whose LastSynced is strictly before it.
	SyncedBefore time.Time
	// MinPriority keeps products with BrandPriority >= MinPriority.
	MinPriority int
}

// Order selects the List ordering. Every order breaks ties by ID.
type Order int

const (
	OrderNone Order = iota
	OrderScoreDesc
	OrderLastSyncedAsc
	// OrderScoreDescSyncedDesc orders by score, newest sync first on ties.
	OrderScoreDescSyncedDesc
	OrderPriorityDesc
	OrderQualityAsc
)

// Query is a Filter plus ordering and an optional Limit (0 = all).
type Query struct {
	Filter
	OrderBy Order
	Limit   int
}

// Bool returns a pointer to b, for Filter.Active.
func Bool(b bool) *bool { return &b }

func (f Filter) matches(p *models.Product) bool {
	if f.Active != nil && p.IsActive != *f.Active {
		return false
	}
	if f.Source != "" && p.Source != f.Source {
		return false
	}
	if !f.SyncedBefore.IsZero() && !p.LastSynced.Before(f.SyncedBefore) {
		return false
	}
	return p.BrandPriority >= f.MinPriority
}
