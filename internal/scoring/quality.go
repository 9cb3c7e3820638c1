// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package scoring

import (
	"math"

	"github.com/tomtom215/atelier/internal/models"
)

// BaselineQuality is the quality score of an item with no reviews.
const BaselineQuality = 30

// wilsonZ is the z-score of a 95% confidence interval.
const wilsonZ = 1.96

// Confidence grades how much evidence backs a quality score.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ConfidenceFor grades a review count: <10 low, 10-50 medium, >50 high.
func ConfidenceFor(reviewCount int) Confidence {
	switch {
	case reviewCount < 10:
		return ConfidenceLow
	case reviewCount <= 50:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// Quality scores reviews as the Wilson lower bound of avg/5 over count trials,
// scaled to 0-100. A few perfect reviews score below many very good ones.
func Quality(reviewCount int, reviewAverage float64) (int, Confidence) {
	if reviewCount <= 0 {
		return BaselineQuality, ConfidenceLow
	}
	p := math.Min(math.Max(reviewAverage/5, 0), 1)
	n := float64(reviewCount)
	z2 := wilsonZ * wilsonZ

	centre := p + z2/(2*n)
	margin := wilsonZ * math.Sqrt((p*(1-p)+z2/(4*n))/n)
	lower := (centre - margin) / (1 + z2/n)

	return models.ClampScore(int(math.Round(lower * 100))), ConfidenceFor(reviewCount)
}
