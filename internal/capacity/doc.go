// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package capacity keeps the catalog under its product limit.

Assess classifies the catalog as Safe, Warning or Critical from the ratio of
stored products to MaxProducts (0.60 and 0.80 by default) or an absolute
critical count. The pipeline scales ingestion volume by the state.

Evict runs only when Critical and deletes down to TargetRatio (0.70) in four
tiers, each in batches of DeleteBatchSize:

 1. inactive products not synced within StaleAfter
 2. products whose brand priority is at least LowPriorityCutoff
 3. any remaining inactive products
 4. the lowest-quality active products

MaxDeletePerRun caps a single pass (0 = unlimited). When the tiers run out
before the target is reached the report carries ErrCapacityCritical.
*/
package capacity
