// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package history persists per-source sync state between runs.

Each source has one models.SyncHistory record: when it last synced, how many
products that run produced and the cumulative total. The pipeline reads it to
order sources and size their fetch target; the rotation scheduler writes it
after each cycle.

Two implementations satisfy Store:

  - BadgerStore: embedded BadgerDB, one key per source ("history:<source>"),
    JSON values. Survives restarts.
  - MemoryStore: a mutex-guarded map for tests and HISTORY_IN_MEMORY=true.

Open picks one from config.HistoryConfig.
*/
package history
