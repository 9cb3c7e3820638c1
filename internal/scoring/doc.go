// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package scoring computes product scores, all integers in [0, 100].

  - Quality: Wilson lower bound of the review average; 30 without reviews.
  - Priority: brand tier, freshness, price fit and personalization around 50.
  - Seasonal: tag matches for the current season, penalized for the opposite one.

Combine blends them with configured weights (default 0.35/0.40/0.25) into the
recommendation score that orders feeds and rotation.
*/
package scoring
