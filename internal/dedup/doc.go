// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

// Package dedup resolves normalized products against the catalog.
//
// Identity is the product ID ("source:itemCode"). Beyond identity, two active
// products with the same brand and the same NormalizeTitle key are duplicates;
// only exact key equality counts, there is no fuzzy matching.
package dedup
