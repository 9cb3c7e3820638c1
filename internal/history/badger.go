// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/models"
)

const (
	keyPrefix  = "history:"
	lastRunKey = "run:last"
)

// BadgerStore implements Store on BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB history store in dir.
func OpenBadger(dir string, syncWrites bool) (*BadgerStore, error) {
	if dir == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.SyncWrites = syncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", dir).
		Bool("sync_writes", syncWrites).
		Msg("History store opened")
	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already open database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func historyKey(source string) []byte {
	return []byte(keyPrefix + source)
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, source string) (models.SyncHistory, bool, error) {
	var h models.SyncHistory
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(historyKey(source))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get history: %w", err)
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &h)
		})
	})
	if err != nil {
		return models.SyncHistory{}, false, s.mapErr(err)
	}
	return h, found, nil
}

// Put implements Store.
func (s *BadgerStore) Put(ctx context.Context, h models.SyncHistory) error {
	if h.Source == "" {
		return errors.New("history record has no source")
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(h.Source), data)
	})
	if err != nil {
		return s.mapErr(fmt.Errorf("set history: %w", err))
	}
	return nil
}

// All implements Store. Badger iterates keys in order, so records come back
// sorted by source.
func (s *BadgerStore) All(ctx context.Context) ([]models.SyncHistory, error) {
	var out []models.SyncHistory

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var h models.SyncHistory
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &h)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, h)
		}
		return nil
	})
	if err != nil {
		return nil, s.mapErr(err)
	}
	return out, nil
}

// PutLastRun implements Store. The run record lives outside the history
// prefix, so All never returns it.
func (s *BadgerStore) PutLastRun(ctx context.Context, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(lastRunKey), data)
	})
	if err != nil {
		return s.mapErr(fmt.Errorf("set last run: %w", err))
	}
	return nil
}

// LastRun implements Store.
func (s *BadgerStore) LastRun(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lastRunKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, s.mapErr(fmt.Errorf("get last run: %w", err))
	}
	return data, true, nil
}

// RunGC reclaims value-log space, repeating until BadgerDB finds nothing
// left to rewrite.
func (s *BadgerStore) RunGC(ratio float64) error {
	start := time.Now()
	rewrites := 0
	for {
		err := s.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return s.mapErr(fmt.Errorf("run value log GC: %w", err))
		}
		rewrites++
	}
	logging.Debug().
		Int("rewrites", rewrites).
		Dur("took", time.Since(start)).
		Msg("History value log GC finished")
	return nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}

func (s *BadgerStore) mapErr(err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}
