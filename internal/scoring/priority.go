// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package scoring

import (
	"math"
	"time"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/models"
)

// neutral is the midpoint score used for absent signals.
const neutral = 50

// Freshness is 100 for products first seen within freshDays, 0 at staleDays
// and older, linear in between.
func Freshness(createdAt, now time.Time, freshDays, staleDays int) int {
	if createdAt.IsZero() {
		return neutral
	}
	days := now.Sub(createdAt).Hours() / 24
	switch {
	case days <= float64(freshDays):
		return 100
	case days >= float64(staleDays):
		return 0
	}
	span := float64(staleDays - freshDays)
	return int(math.Round(100 * (float64(staleDays) - days) / span))
}

// Personalization scores affinity to prefs. It is 50 with no preferences and
// rises with the strongest matching tag weight and the brand weight.
func Personalization(p *models.Product, prefs *models.Preferences) int {
	if prefs.Empty() {
		return neutral
	}
	tagMatch := 0.0
	for _, tag := range p.Tags {
		tagMatch = math.Max(tagMatch, prefs.TagWeights[tag])
	}
	brandMatch := prefs.BrandWeights[p.Brand]
	affinity := 0.6*clamp01(tagMatch) + 0.4*clamp01(brandMatch)
	return models.ClampScore(int(math.Round(neutral + neutral*affinity)))
}

// Priority scores business priority: brand tier, freshness, price fit and
// personalization around a base of 50.
func Priority(p *models.Product, src config.SourceConfig, now time.Time, prefs *models.Preferences, cfg config.ScoringConfig) int {
	tier := min(max(src.Priority, 0), cfg.MaxPriorityTier)
	score := float64(neutral + (cfg.MaxPriorityTier-tier)*cfg.PriorityStep)

	fresh := Freshness(p.CreatedAt, now, cfg.FreshDays, cfg.StaleDays)
	score += float64(fresh-neutral) * cfg.FreshnessWeight

	if p.Price > 0 && src.PriceRange.Contains(p.Price) {
		score += float64(cfg.PriceFitBonus)
	}

	score += float64(Personalization(p, prefs)-neutral) * cfg.PersonalizationWeight
	return models.ClampScore(int(math.Round(score)))
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
