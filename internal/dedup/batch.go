// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package dedup

import (
	"context"

	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/models"
)

// PriceUpdate sets the price of an existing product.
type PriceUpdate struct {
	ID    string
	Price int
}

// Plan is the store work for one batch of candidates.
type Plan struct {
	// Upserts holds inserts followed by updates, in candidate order.
	Upserts      []*models.Product
	PriceUpdates []PriceUpdate
	// Touches lists existing products whose LastSynced must be refreshed.
	Touches []string

	Inserted   int
	Updated    int
	Skipped    int
	InBatchDup int
}

// Batch resolves candidates against the store and against each other: two
// candidates in one batch with the same ID or title key become one product.
// An error aborts the whole batch.
func (r *Resolver) Batch(ctx context.Context, candidates []*models.Product) (*Plan, error) {
	plan := &Plan{}
	byID := make(map[string]int)  // index into plan.Upserts
	byKey := make(map[string]int) // index into plan.Upserts

	for _, c := range candidates {
		if c == nil {
			continue
		}
		if i, ok := byID[c.ID]; ok {
			c.TitleKey = NormalizeTitle(c.Title)
			r.mergeInBatch(plan, i, c)
			continue
		}
		key := titleKey(NormalizeTitle(c.Title), c.Brand)
		if i, ok := byKey[key]; ok && key != titleKey("", c.Brand) {
			c.TitleKey = NormalizeTitle(c.Title)
			r.mergeInBatch(plan, i, c)
			continue
		}

		res, err := r.Resolve(ctx, c)
		if err != nil {
			return nil, err
		}
		switch res.Action {
		case ActionInsert, ActionUpdate:
			byID[c.ID] = len(plan.Upserts)
			byKey[key] = len(plan.Upserts)
			plan.Upserts = append(plan.Upserts, c)
			if res.Action == ActionInsert {
				plan.Inserted++
			} else {
				plan.Updated++
			}
		case ActionUpdatePrice:
			plan.PriceUpdates = append(plan.PriceUpdates, PriceUpdate{ID: res.Existing.ID, Price: c.Price})
			plan.Updated++
		case ActionSkip:
			plan.Touches = append(plan.Touches, res.Existing.ID)
			plan.Skipped++
		}
	}
	return plan, nil
}

// mergeInBatch folds a later duplicate into the upsert at index i. The first
// candidate wins unless it has no price and the later one does.
func (r *Resolver) mergeInBatch(plan *Plan, i int, c *models.Product) {
	plan.InBatchDup++
	plan.Skipped++
	metrics.RecordDedup("batch")
	if first := plan.Upserts[i]; first.Price <= 0 && c.Price > 0 {
		first.Price = c.Price
	}
}
