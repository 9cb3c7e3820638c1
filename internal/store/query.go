// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package store

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/atelier/internal/models"
)

// Eviction candidate queries. The Delete* methods of every store delete
// exactly the rows these select, so a dry run can list what a live pass removes.

// StaleInactiveQuery selects inactive products last synced before cutoff, oldest first.
func StaleInactiveQuery(cutoff time.Time, limit int) Query {
	return Query{
		Filter:  Filter{Active: Bool(false), SyncedBefore: cutoff},
		OrderBy: OrderLastSyncedAsc,
		Limit:   limit,
	}
}

// LowPriorityQuery selects products whose brand priority is at least cutoff,
// least important first.
func LowPriorityQuery(cutoff, limit int) Query {
	return Query{Filter: Filter{MinPriority: cutoff}, OrderBy: OrderPriorityDesc, Limit: limit}
}

// InactiveQuery selects inactive products, oldest first.
func InactiveQuery(limit int) Query {
	return Query{Filter: Filter{Active: Bool(false)}, OrderBy: OrderLastSyncedAsc, Limit: limit}
}

// LowestQualityActiveQuery selects active products, lowest quality first.
func LowestQualityActiveQuery(limit int) Query {
	return Query{Filter: Filter{Active: Bool(true)}, OrderBy: OrderQualityAsc, Limit: limit}
}

// compareProducts implements Order for in-memory sorting.
func compareProducts(order Order) func(a, b *models.Product) int {
	return func(a, b *models.Product) int {
		var c int
		switch order {
		case OrderScoreDesc:
			c = cmp.Compare(b.RecommendationScore, a.RecommendationScore)
		case OrderLastSyncedAsc:
			c = a.LastSynced.Compare(b.LastSynced)
		case OrderScoreDescSyncedDesc:
			c = cmp.Or(
				cmp.Compare(b.RecommendationScore, a.RecommendationScore),
				b.LastSynced.Compare(a.LastSynced),
			)
		case OrderPriorityDesc:
			c = cmp.Or(
				cmp.Compare(b.BrandPriority, a.BrandPriority),
				cmp.Compare(a.QualityScore, b.QualityScore),
			)
		case OrderQualityAsc:
			c = cmp.Or(
				cmp.Compare(a.QualityScore, b.QualityScore),
				a.LastSynced.Compare(b.LastSynced),
			)
		}
		return cmp.Or(c, strings.Compare(a.ID, b.ID))
	}
}

// orderClause is the SQL equivalent of compareProducts.
func orderClause(order Order) string {
	switch order {
	case OrderScoreDesc:
		return " ORDER BY recommendation_score DESC, id"
	case OrderLastSyncedAsc:
		return " ORDER BY last_synced ASC, id"
	case OrderScoreDescSyncedDesc:
		return " ORDER BY recommendation_score DESC, last_synced DESC, id"
	case OrderPriorityDesc:
		return " ORDER BY brand_priority DESC, quality_score ASC, id"
	case OrderQualityAsc:
		return " ORDER BY quality_score ASC, last_synced ASC, id"
	default:
		return " ORDER BY id"
	}
}

func sortProducts(ps []*models.Product, order Order) {
	slices.SortFunc(ps, compareProducts(order))
}
