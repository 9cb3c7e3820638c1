// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package pipeline runs one catalog sync cycle.

A run has four stages that execute strictly in order:

 1. plan: choose sources for the sync mode, order them by effective priority
    and size each one's fetch target from its history and the capacity state.
 2. ingest: fetch pages per source (sources in parallel, pages sequential),
    normalize, deduplicate, score and write in batches.
 3. rotate: bring each planned source's active set back to its target and
    record its sync history.
 4. evict: when capacity is critical, delete products tier by tier.

Errors are recovered at the smallest scope that makes sense. A bad item is
dropped, a failed page is skipped, a failed batch is logged and the next one
written, and a failed source is recorded in the summary without touching the
others. Run returns a RunSummary describing all of it rather than failing on
the first error.

Dry runs fetch and plan as usual but leave the store and history untouched.
*/
package pipeline
