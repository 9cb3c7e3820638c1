// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

// Package rotation keeps each source's active set at its configured size.
//
// A rotation cycle deactivates the oldest-synced surplus when a source has more
// active products than TargetActiveCount and activates the best-scored inactive
// products when it has fewer. After the cycle the source's sync history is
// recorded so the pipeline can tell when it is next due.
package rotation
