// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package models

import (
	"slices"
	"strings"
	"time"
)

// Score bounds shared by quality and recommendation scores.
const (
	MinScore = 0
	MaxScore = 100
)

// Product is the canonical catalog entity.
//
// ID is stable across syncs ("source:itemCode"); re-fetching the same upstream
// item upserts it. TitleKey is the normalized title used for duplicate detection.
type Product struct {
	ID             string `json:"id" db:"id"`
	Source         string `json:"source" db:"source"`
	SourceItemCode string `json:"source_item_code" db:"source_item_code"`

	Title       string `json:"title" db:"title"`
	TitleKey    string `json:"-" db:"title_key"`
	Brand       string `json:"brand" db:"brand"`
	SourceBrand string `json:"source_brand" db:"source_brand"`

	Price        int      `json:"price" db:"price"`
	ImageURL     string   `json:"image_url" db:"image_url"`
	AffiliateURL string   `json:"affiliate_url" db:"affiliate_url"`
	Tags         []string `json:"tags" db:"tags"`
	Category     string   `json:"category" db:"category"`

	ReviewCount   int     `json:"review_count" db:"review_count"`
	ReviewAverage float64 `json:"review_average" db:"review_average"`

	QualityScore        int `json:"quality_score" db:"quality_score"`
	RecommendationScore int `json:"recommendation_score" db:"recommendation_score"`
	BrandPriority       int `json:"brand_priority" db:"brand_priority"`

	IsActive   bool      `json:"is_active" db:"is_active"`
	LastSynced time.Time `json:"last_synced" db:"last_synced"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ProductID builds the stable identity for an upstream item.
func ProductID(source, itemCode string) string {
	return source + ":" + itemCode
}

// HasTag reports whether the product carries tag.
func (p *Product) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// Clone returns a deep copy; stores hand out clones so callers cannot mutate shared state.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Tags = slices.Clone(p.Tags)
	return &c
}

// ClampScore bounds v to [MinScore, MaxScore].
func ClampScore(v int) int {
	return min(max(v, MinScore), MaxScore)
}

// NormalizeTags removes blanks and duplicates, keeping first occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
