// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package store persists the product catalog.

ProductStore is implemented three ways:

  - SQLStore with the DuckDB dialect (embedded file, the default)
  - SQLStore with the Postgres dialect (pgx stdlib driver)
  - MemoryStore (tests, DB_DRIVER=memory)

Open selects one from config.DatabaseConfig. All three share the same eviction
candidate queries (StaleInactiveQuery, LowPriorityQuery, InactiveQuery,
LowestQualityActiveQuery), so the capacity manager's dry run lists exactly the
rows a live pass deletes.

Failed mutations return *WriteError, which matches both ErrStoreWrite and the
underlying driver error under errors.Is. Every SQL statement is timed into the
store_query_duration_seconds histogram.
*/
package store
