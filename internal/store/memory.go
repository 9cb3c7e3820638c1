// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package store

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/atelier/internal/models"
)

// MemoryStore is a map-backed ProductStore for tests and DB_DRIVER=memory.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*models.Product
	closed   bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[string]*models.Product)}
}

func (s *MemoryStore) Upsert(ctx context.Context, products []*models.Product) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, writeErr("upsert", len(products), ErrClosed)
	}
	for _, p := range products {
		c := p.Clone()
		if old, ok := s.products[p.ID]; ok && !old.CreatedAt.IsZero() {
			c.CreatedAt = old.CreatedAt
		}
		s.products[p.ID] = c
	}
	return len(products), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) FindActiveByTitleKey(_ context.Context, titleKey, brand string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Product
	for _, p := range s.products {
		if !p.IsActive || p.TitleKey != titleKey || p.Brand != brand {
			continue
		}
		// Lowest ID wins so repeated lookups are stable.
		if found == nil || p.ID < found.ID {
			found = p
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found.Clone(), nil
}

func (s *MemoryStore) Touch(_ context.Context, ids []string, at time.Time) (int, error) {
	return s.update(ids, func(p *models.Product) { p.LastSynced = at })
}

func (s *MemoryStore) UpdatePrice(_ context.Context, id string, price int, at time.Time) error {
	n, err := s.update([]string{id}, func(p *models.Product) {
		p.Price = price
		p.LastSynced = at
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) SetActive(_ context.Context, ids []string, active bool) (int, error) {
	return s.update(ids, func(p *models.Product) { p.IsActive = active })
}

func (s *MemoryStore) update(ids []string, fn func(*models.Product)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, writeErr("update", len(ids), ErrClosed)
	}
	n := 0
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			fn(p)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteByIDs(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, writeErr("delete", len(ids), ErrClosed)
	}
	n := 0
	for _, id := range ids {
		if _, ok := s.products[id]; ok {
			delete(s.products, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteInactiveOlderThan(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	return s.deleteQuery(ctx, StaleInactiveQuery(cutoff, limit))
}

func (s *MemoryStore) DeleteByPriorityAtLeast(ctx context.Context, cutoff, limit int) (int, error) {
	return s.deleteQuery(ctx, LowPriorityQuery(cutoff, limit))
}

func (s *MemoryStore) DeleteInactive(ctx context.Context, limit int) (int, error) {
	return s.deleteQuery(ctx, InactiveQuery(limit))
}

func (s *MemoryStore) DeleteLowestQualityActive(ctx context.Context, limit int) (int, error) {
	return s.deleteQuery(ctx, LowestQualityActiveQuery(limit))
}

func (s *MemoryStore) deleteQuery(ctx context.Context, q Query) (int, error) {
	victims, err := s.List(ctx, q)
	if err != nil {
		return 0, err
	}
	ids := make([]string, len(victims))
	for i, p := range victims {
		ids[i] = p.ID
	}
	return s.DeleteByIDs(ctx, ids)
}

func (s *MemoryStore) Count(_ context.Context, f Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.products {
		if f.matches(p) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) List(ctx context.Context, q Query) ([]*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]*models.Product, 0, len(s.products))
	for _, p := range s.products {
		if q.matches(p) {
			out = append(out, p.Clone())
		}
	}
	s.mu.RUnlock()

	sortProducts(out, q.OrderBy)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
