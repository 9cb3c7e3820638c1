// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

// Package testinfra provides shared test fixtures.
//
// CatalogServer is an httptest fake of the upstream item-search API. It pages a
// fixed item set per shop code or keyword, can inject 429 and 5xx responses,
// and records every request so tests can assert on the query sent upstream.
//
// Container helpers (build tag "integration") start real dependencies with
// testcontainers-go:
//
//	func TestPostgresStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//	    // open store.Postgres with pg.DSN
//	}
//
// Integration tests require Docker and are skipped when it is unavailable.
package testinfra
