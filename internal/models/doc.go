// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package models defines the data structures shared across Atelier.

Key Components:

  - Product: the canonical catalog entity, keyed by a stable "source:itemCode" id
  - RawItem: the typed upstream search-API record, decoded at the HTTP boundary
  - SyncHistory: per-source run state persisted between runs
  - Season: calendar season used by seasonal scoring
  - Preferences: optional personalization weights supplied at read time
  - APIResponse: envelope for HTTP responses

Products are created by the ingestion pipeline, mutated on re-sync, flipped
inactive by rotation or capacity management, and deleted only by eviction.
An inactive product is never returned from read-time selection.
*/
package models
