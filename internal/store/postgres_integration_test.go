// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/testinfra"
)

func TestSQLStore_Postgres(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("NewPostgresContainer() error = %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, pg)

	cfg := config.DatabaseConfig{Driver: config.DriverPostgres, DSN: pg.DSN, MaxOpenConns: 4, QueryTimeout: 10 * time.Second}
	testProductStore(t, func(t *testing.T) ProductStore {
		s, err := OpenSQL(Postgres, pg.DSN, cfg)
		if err != nil {
			t.Fatalf("OpenSQL() error = %v", err)
		}
		// Subtests share one database; start each from an empty table.
		if _, err := s.db.ExecContext(ctx, "TRUNCATE products"); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		t.Cleanup(func() { closeQuietly(s) })
		return s
	})
}
