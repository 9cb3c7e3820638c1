// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

// Package diversity orders a score-sorted candidate list so that no category,
// brand, price band or style tag dominates any short run of the output.
//
// Selection is a greedy, order-preserving scan over rolling windows of the most
// recently accepted products. Constraints are soft: candidates held back by a
// full window are appended afterwards in their original order, so the output
// is never shorter than the input allows.
package diversity
