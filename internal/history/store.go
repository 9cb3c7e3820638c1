// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package history

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/models"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("history store is closed")

// Store reads and writes sync history records keyed by source name.
type Store interface {
	// Get returns the record for source; ok is false when none exists.
	Get(ctx context.Context, source string) (h models.SyncHistory, ok bool, err error)
	Put(ctx context.Context, h models.SyncHistory) error
	// All returns every record sorted by source name.
	All(ctx context.Context) ([]models.SyncHistory, error)
	// PutLastRun replaces the encoded summary of the latest run.
	PutLastRun(ctx context.Context, data []byte) error
	// LastRun returns what PutLastRun stored; ok is false when nothing was.
	LastRun(ctx context.Context) (data []byte, ok bool, err error)
	Close() error
}

// Open returns the store selected by cfg.
func Open(cfg config.HistoryConfig) (Store, error) {
	if cfg.InMemory {
		return NewMemoryStore(), nil
	}
	return OpenBadger(cfg.Path, cfg.SyncWrites)
}

// MemoryStore keeps history in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.SyncHistory
	lastRun []byte
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.SyncHistory)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, source string) (models.SyncHistory, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return models.SyncHistory{}, false, ErrClosed
	}
	h, ok := m.records[source]
	return h, ok, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, h models.SyncHistory) error {
	if h.Source == "" {
		return errors.New("history record has no source")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records[h.Source] = h
	return nil
}

// All implements Store.
func (m *MemoryStore) All(_ context.Context) ([]models.SyncHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]models.SyncHistory, 0, len(m.records))
	for _, h := range m.records {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out, nil
}

// PutLastRun implements Store.
func (m *MemoryStore) PutLastRun(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.lastRun = bytes.Clone(data)
	return nil
}

// LastRun implements Store.
func (m *MemoryStore) LastRun(_ context.Context) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	if m.lastRun == nil {
		return nil, false, nil
	}
	return bytes.Clone(m.lastRun), true, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetOrNew returns the stored record or a fresh one seeded from src.
func GetOrNew(ctx context.Context, s Store, src config.SourceConfig) (models.SyncHistory, error) {
	h, ok, err := s.Get(ctx, src.Name)
	if err != nil {
		return models.SyncHistory{}, err
	}
	if !ok {
		h = models.SyncHistory{Source: src.Name}
	}
	h.TargetCount = src.TargetActiveCount
	h.Priority = src.Priority
	return h, nil
}
