// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package store

import (
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2" // registers "duckdb"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
)

// Dialect holds the per-database differences of SQLStore. Both dialects use
// $N placeholders and INSERT ... ON CONFLICT upserts.
type Dialect struct {
	Name          string
	Driver        string
	TimestampType string
	FloatType     string
	// Indexes are created after the table. DuckDB relies on zonemaps instead:
	// ART indexes turn updates of indexed columns into delete+insert.
	Indexes []string
	// Checkpoint runs before Close to flush the WAL.
	Checkpoint bool
}

var (
	// DuckDB is the embedded default.
	DuckDB = Dialect{
		Name:          "duckdb",
		Driver:        "duckdb",
		TimestampType: "TIMESTAMP",
		FloatType:     "DOUBLE",
		Checkpoint:    true,
	}

	// Postgres uses the pgx stdlib driver.
	Postgres = Dialect{
		Name:          "postgres",
		Driver:        "pgx",
		TimestampType: "TIMESTAMPTZ",
		FloatType:     "DOUBLE PRECISION",
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_products_title_key ON products (title_key, brand)`,
			`CREATE INDEX IF NOT EXISTS idx_products_source_active ON products (source, is_active)`,
			`CREATE INDEX IF NOT EXISTS idx_products_score ON products (recommendation_score DESC)`,
		},
	}
)

func (d Dialect) schema() []string {
	table := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS products (
	id                   TEXT PRIMARY KEY,
	source               TEXT NOT NULL,
	source_item_code     TEXT NOT NULL,
	title                TEXT NOT NULL,
	title_key            TEXT NOT NULL DEFAULT '',
	brand                TEXT NOT NULL,
	source_brand         TEXT NOT NULL DEFAULT '',
	price                INTEGER NOT NULL,
	image_url            TEXT NOT NULL,
	affiliate_url        TEXT NOT NULL DEFAULT '',
	tags                 TEXT NOT NULL DEFAULT '[]',
	category             TEXT NOT NULL DEFAULT '',
	review_count         INTEGER NOT NULL DEFAULT 0,
	review_average       %[1]s NOT NULL DEFAULT 0,
	quality_score        INTEGER NOT NULL DEFAULT 0,
	recommendation_score INTEGER NOT NULL DEFAULT 0,
	brand_priority       INTEGER NOT NULL DEFAULT 0,
	is_active            BOOLEAN NOT NULL DEFAULT TRUE,
	last_synced          %[2]s NOT NULL,
	created_at           %[2]s NOT NULL
)`, d.FloatType, d.TimestampType)
	return append([]string{table}, d.Indexes...)
}
