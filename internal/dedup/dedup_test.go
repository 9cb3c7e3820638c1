// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/store"
)

var now = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func candidate(id, title string, price int) *models.Product {
	return &models.Product{
		ID:         "src:" + id,
		Source:     "src",
		Title:      title,
		Brand:      "GU",
		Price:      price,
		IsActive:   true,
		LastSynced: now,
	}
}

func seeded(t *testing.T, ps ...*models.Product) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	for _, p := range ps {
		p.TitleKey = NormalizeTitle(p.Title)
	}
	if _, err := s.Upsert(context.Background(), ps); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Cool  Shirt!! ", "cool shirt"},
		{"【送料無料】 Cool  Shirt!! ", "送料無料 cool shirt"},
		{"【送料無料】Cool Shirt", "送料無料cool shirt"},
		{"【新作】ニット", "新作ニット"},
		{"ＣＯＯＬ　ＳＨＩＲＴ", "cool shirt"},
		{"(新作) ﾆｯﾄ [S-XL]", "新作 ニット sxl"},
		{"★☆★", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTitle_BracketedMatchesBare(t *testing.T) {
	pairs := [][2]string{
		{"【新作】ニット", "新作ニット"},
		{"【送料無料】Cool Shirt", "送料無料Cool Shirt"},
		{"（限定）デニム[2026]", "限定デニム2026"},
	}
	for _, p := range pairs {
		if a, b := NormalizeTitle(p[0]), NormalizeTitle(p[1]); a != b {
			t.Errorf("NormalizeTitle(%q) = %q, NormalizeTitle(%q) = %q, want equal", p[0], a, p[1], b)
		}
	}
}

func TestResolve(t *testing.T) {
	existing := candidate("1", "Cool Shirt", 1990)
	existing.IsActive = false
	priceless := candidate("2", "Warm Coat", 0)
	other := candidate("3", "Linen Dress", 4990)
	s := seeded(t, existing, priceless, other)
	r := NewResolver(s)

	tests := []struct {
		name       string
		cand       *models.Product
		want       Action
		existingID string
	}{
		{"same id updates", candidate("1", "Cool Shirt v2", 2490), ActionUpdate, "src:1"},
		{"title dup of priceless fills price", candidate("9", "warm  COAT!", 5990), ActionUpdatePrice, "src:2"},
		{"title dup skips", candidate("8", "linen dress", 3990), ActionSkip, "src:3"},
		{"inactive title match inserts", candidate("7", "cool shirt", 1990), ActionInsert, ""},
		{"new title inserts", candidate("6", "Denim Skirt", 2990), ActionInsert, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(context.Background(), tt.cand)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if res.Action != tt.want {
				t.Errorf("Action = %s, want %s", res.Action, tt.want)
			}
			if tt.existingID != "" && (res.Existing == nil || res.Existing.ID != tt.existingID) {
				t.Errorf("Existing = %+v, want %s", res.Existing, tt.existingID)
			}
			if tt.cand.TitleKey != NormalizeTitle(tt.cand.Title) {
				t.Errorf("TitleKey not set: %q", tt.cand.TitleKey)
			}
		})
	}
}

func TestResolve_UpdateKeepsActivation(t *testing.T) {
	stored := candidate("1", "Cool Shirt", 1990)
	stored.IsActive = false
	r := NewResolver(seeded(t, stored))

	c := candidate("1", "Cool Shirt", 1990)
	if _, err := r.Resolve(context.Background(), c); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if c.IsActive {
		t.Error("update reactivated a product rotation had deactivated")
	}
}

type failingLookup struct{}

func (failingLookup) Get(context.Context, string) (*models.Product, error) {
	return nil, errors.New("connection refused")
}

func (failingLookup) FindActiveByTitleKey(context.Context, string, string) (*models.Product, error) {
	return nil, store.ErrNotFound
}

func TestResolve_LookupError(t *testing.T) {
	_, err := NewResolver(failingLookup{}).Resolve(context.Background(), candidate("1", "x", 1))
	if err == nil {
		t.Fatal("expected lookup error")
	}
}

func TestBatch(t *testing.T) {
	s := seeded(t,
		candidate("1", "Cool Shirt", 1990),
		candidate("2", "Warm Coat", 0),
	)
	r := NewResolver(s)

	plan, err := r.Batch(context.Background(), []*models.Product{
		candidate("1", "Cool Shirt", 2190),   // update by id
		candidate("5", "Denim Skirt", 0),     // insert
		candidate("6", "denim skirt!", 2990), // in-batch dup, fills price
		candidate("9", "Warm Coat", 5990),    // update price of src:2
		nil,
		candidate("5", "Denim Skirt", 1000), // same id again in batch
		candidate("10", "NEW Knit", 3990),   // insert
	})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	if plan.Inserted != 2 || plan.Updated != 2 || plan.Skipped != 2 || plan.InBatchDup != 2 {
		t.Errorf("counts = ins %d upd %d skip %d dup %d", plan.Inserted, plan.Updated, plan.Skipped, plan.InBatchDup)
	}
	if len(plan.Upserts) != 3 {
		t.Fatalf("Upserts = %d, want 3", len(plan.Upserts))
	}
	if skirt := plan.Upserts[1]; skirt.ID != "src:5" || skirt.Price != 2990 {
		t.Errorf("merged skirt = %s price %d, want src:5 price 2990", skirt.ID, skirt.Price)
	}
	if len(plan.PriceUpdates) != 1 || plan.PriceUpdates[0] != (PriceUpdate{ID: "src:2", Price: 5990}) {
		t.Errorf("PriceUpdates = %+v", plan.PriceUpdates)
	}
}

func TestActionString(t *testing.T) {
	if ActionUpdatePrice.String() != "update_price" || Action(42).String() != "action(42)" {
		t.Error("unexpected Action strings")
	}
}
