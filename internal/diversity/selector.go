// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package diversity

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/normalize"
)

// Price bands.
const (
	BandUnknown = "unknown"
	BandLow     = "low"
	BandMiddle  = "middle"
	BandHigh    = "high"
	BandLuxury  = "luxury"
)

// maxStylesPerProduct bounds how many style tags one product contributes.
const maxStylesPerProduct = 2

// PriceBandOf buckets a yen price.
func PriceBandOf(price int) string {
	switch {
	case price <= 0:
		return BandUnknown
	case price < 3000:
		return BandLow
	case price < 10000:
		return BandMiddle
	case price < 30000:
		return BandHigh
	default:
		return BandLuxury
	}
}

// StylesOf returns up to two style tags of p, in tag order. A tag is a style
// when it contains one of normalize.StylePatterns.
func StylesOf(p *models.Product) []string {
	var out []string
	for _, tag := range p.Tags {
		for _, pattern := range normalize.StylePatterns {
			if strings.Contains(tag, pattern) {
				out = append(out, tag)
				break
			}
		}
		if len(out) == maxStylesPerProduct {
			break
		}
	}
	return out
}

// Constraints bounds how often a dimension value may repeat within the last
// WindowSize accepted products. Style tags use a window twice as long.
type Constraints struct {
	WindowSize      int `json:"window_size" validate:"gte=1,lte=50"`
	MaxPerCategory  int `json:"max_per_category" validate:"gte=1"`
	MaxPerBrand     int `json:"max_per_brand" validate:"gte=1"`
	MaxPerPriceBand int `json:"max_per_price_band" validate:"gte=1"`
	MaxPerStyle     int `json:"max_per_style" validate:"gte=1"`
	// Limit caps the output length; 0 keeps every valid candidate.
	Limit int `json:"limit" validate:"gte=0"`
}

// DefaultConstraints returns the configured defaults.
func DefaultConstraints(cfg config.DiversityConfig) Constraints {
	return Constraints{
		WindowSize:      cfg.WindowSize,
		MaxPerCategory:  cfg.MaxPerCategory,
		MaxPerBrand:     cfg.MaxPerBrand,
		MaxPerPriceBand: cfg.MaxPerPriceBand,
		MaxPerStyle:     cfg.MaxPerStyle,
		Limit:           cfg.FeedLimit,
	}
}

// Selector applies Constraints to candidate lists. It is stateless and safe for
// concurrent use.
type Selector struct {
	logger zerolog.Logger
}

// NewSelector creates a Selector that logs skipped candidates to logger.
func NewSelector(logger zerolog.Logger) *Selector {
	return &Selector{logger: logger}
}

// Select returns candidates reordered under c. Nil and inactive candidates are
// dropped with a warning.
func (s *Selector) Select(candidates []*models.Product, c Constraints) []*models.Product {
	valid := make([]*models.Product, 0, len(candidates))
	for i, p := range candidates {
		switch {
		case p == nil:
			s.logger.Warn().Int("index", i).Msg("Skipping nil feed candidate")
		case !p.IsActive:
			s.logger.Warn().Int("index", i).Str("product_id", p.ID).Msg("Skipping inactive feed candidate")
		default:
			valid = append(valid, p)
		}
	}

	limit := c.Limit
	if limit <= 0 || limit > len(valid) {
		limit = len(valid)
	}
	window := max(c.WindowSize, 1)

	var (
		categories = newRolling(window)
		brands     = newRolling(window)
		bands      = newRolling(window)
		styles     = newRolling(window * 2)
		out        = make([]*models.Product, 0, limit)
		held       []*models.Product
	)

	for _, p := range valid {
		if len(out) == limit {
			break
		}
		band := PriceBandOf(p.Price)
		ps := StylesOf(p)

		if (p.Category != "" && categories.count(p.Category) >= c.MaxPerCategory) ||
			(p.Brand != "" && brands.count(p.Brand) >= c.MaxPerBrand) ||
			bands.count(band) >= c.MaxPerPriceBand ||
			styles.anyAtLeast(ps, c.MaxPerStyle) {
			held = append(held, p)
			continue
		}

		out = append(out, p)
		if p.Category != "" {
			categories.push(p.Category)
		}
		if p.Brand != "" {
			brands.push(p.Brand)
		}
		bands.push(band)
		for _, st := range ps {
			styles.push(st)
		}
	}

	for _, p := range held {
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out
}

// rolling is a bounded FIFO of recent dimension values.
type rolling struct {
	size   int
	values []string
}

func newRolling(size int) *rolling {
	return &rolling{size: size, values: make([]string, 0, size)}
}

func (r *rolling) push(v string) {
	if len(r.values) == r.size {
		r.values = r.values[1:]
	}
	r.values = append(r.values, v)
}

func (r *rolling) count(v string) int {
	n := 0
	for _, x := range r.values {
		if x == v {
			n++
		}
	}
	return n
}

func (r *rolling) anyAtLeast(vs []string, limit int) bool {
	for _, v := range vs {
		if r.count(v) >= limit {
			return true
		}
	}
	return false
}
