// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package dedup

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/store"
)

// Action is what to do with a candidate product.
type Action int

const (
	// ActionInsert stores a new product.
	ActionInsert Action = iota
	// ActionUpdate replaces the product with the same ID.
	ActionUpdate
	// ActionUpdatePrice fills in the price of an existing duplicate that had none.
	ActionUpdatePrice
	// ActionSkip refreshes only LastSynced of an existing duplicate.
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionUpdatePrice:
		return "update_price"
	case ActionSkip:
		return "skip"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Resolution is the outcome for one candidate. Existing is set for every
// action except ActionInsert.
type Resolution struct {
	Action    Action
	Candidate *models.Product
	Existing  *models.Product
}

// Lookup is the read side of the product store the resolver needs.
type Lookup interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	FindActiveByTitleKey(ctx context.Context, titleKey, brand string) (*models.Product, error)
}

// Resolver decides whether candidates are new, re-fetches or duplicates.
type Resolver struct {
	lookup Lookup
}

// NewResolver creates a Resolver reading from lookup.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve classifies candidate and sets its TitleKey.
//
// A candidate whose ID is already stored is the same entity and is updated in
// place, keeping the stored activation state and creation time. Otherwise an
// active product with the same normalized title and brand makes it a
// duplicate: the existing product gets the candidate's price if it had none,
// else it is only touched.
func (r *Resolver) Resolve(ctx context.Context, candidate *models.Product) (Resolution, error) {
	candidate.TitleKey = NormalizeTitle(candidate.Title)

	existing, err := r.lookup.Get(ctx, candidate.ID)
	switch {
	case err == nil:
		candidate.IsActive = existing.IsActive
		if !existing.CreatedAt.IsZero() {
			candidate.CreatedAt = existing.CreatedAt
		}
		metrics.RecordDedup("id")
		return Resolution{Action: ActionUpdate, Candidate: candidate, Existing: existing}, nil
	case !errors.Is(err, store.ErrNotFound):
		return Resolution{}, fmt.Errorf("lookup %s: %w", candidate.ID, err)
	}

	if candidate.TitleKey == "" {
		return Resolution{Action: ActionInsert, Candidate: candidate}, nil
	}
	dup, err := r.lookup.FindActiveByTitleKey(ctx, candidate.TitleKey, candidate.Brand)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Resolution{Action: ActionInsert, Candidate: candidate}, nil
	case err != nil:
		return Resolution{}, fmt.Errorf("lookup title of %s: %w", candidate.ID, err)
	}

	metrics.RecordDedup("title")
	if dup.Price <= 0 && candidate.Price > 0 {
		return Resolution{Action: ActionUpdatePrice, Candidate: candidate, Existing: dup}, nil
	}
	return Resolution{Action: ActionSkip, Candidate: candidate, Existing: dup}, nil
}
