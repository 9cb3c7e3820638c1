// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package services provides suture.Service wrappers for Atelier components.

Each wrapper implements suture.Service and fmt.Stringer:

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancellation
  - SyncService: runs the pipeline on startup (optional) and on a fixed interval
  - HistoryGCService: periodic BadgerDB value-log GC for the history store

Wrappers take narrow interfaces so tests can substitute fakes.
*/
package services
