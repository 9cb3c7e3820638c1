// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package diversity

import "github.com/tomtom215/atelier/internal/models"

// Score rates how varied products is, from 0 (every product alike) to 1.
//
// Each sliding window of windowSize products is rated by the share of distinct
// categories, brands, price bands and style tags it holds; the result is the
// mean over all windows. Lists shorter than two products score 1.
func Score(products []*models.Product, windowSize int) float64 {
	ps := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if p != nil {
			ps = append(ps, p)
		}
	}
	if len(ps) < 2 {
		return 1
	}
	if windowSize < 2 || windowSize > len(ps) {
		windowSize = len(ps)
	}

	var sum float64
	windows := len(ps) - windowSize + 1
	for start := range windows {
		sum += windowScore(ps[start : start+windowSize])
	}
	return sum / float64(windows)
}

func windowScore(ps []*models.Product) float64 {
	categories := make(map[string]struct{})
	brands := make(map[string]struct{})
	bands := make(map[string]struct{})
	styles := make(map[string]struct{})
	for _, p := range ps {
		categories[p.Category] = struct{}{}
		brands[p.Brand] = struct{}{}
		bands[PriceBandOf(p.Price)] = struct{}{}
		for _, s := range StylesOf(p) {
			styles[s] = struct{}{}
		}
	}
	n := float64(len(ps))
	styleShare := min(float64(len(styles))/n, 1)
	return (float64(len(categories))/n + float64(len(brands))/n + float64(len(bands))/n + styleShare) / 4
}
