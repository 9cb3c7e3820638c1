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

// Weights blend the three component scores. They sum to 1.
type Weights struct {
	Quality  float64
	Priority float64
	Seasonal float64
}

// DefaultWeights are the production blend.
var DefaultWeights = Weights{Quality: 0.35, Priority: 0.40, Seasonal: 0.25}

// Combine blends component scores into the recommendation score.
func Combine(quality, priority, seasonal int, w Weights) int {
	v := float64(quality)*w.Quality + float64(priority)*w.Priority + float64(seasonal)*w.Seasonal
	return models.ClampScore(int(math.Round(v)))
}

// Breakdown exposes the component scores of one product.
type Breakdown struct {
	Quality        int
	Confidence     Confidence
	Priority       int
	Seasonal       int
	Recommendation int
}

// Scorer applies ScoringConfig with a clock. Safe for concurrent use.
type Scorer struct {
	cfg     config.ScoringConfig
	weights Weights
	now     func() time.Time
	// season overrides the clock's season when set.
	season models.Season
}

// New creates a Scorer using the wall clock.
func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{
		cfg:     cfg,
		weights: Weights{Quality: cfg.QualityWeight, Priority: cfg.PriorityWeight, Seasonal: cfg.SeasonalWeight},
		now:     time.Now,
	}
}

// WithClock returns a copy of s reading time from now.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	c := *s
	c.now = now
	return &c
}

// WithSeason returns a copy of s that scores seasonality for season
// regardless of the clock. The zero Season restores the clock's season.
func (s *Scorer) WithSeason(season models.Season) *Scorer {
	c := *s
	c.season = season
	return &c
}

// Breakdown computes every component for p.
func (s *Scorer) Breakdown(p *models.Product, src config.SourceConfig, prefs *models.Preferences) Breakdown {
	now := s.now()
	quality, confidence := Quality(p.ReviewCount, p.ReviewAverage)
	priority := Priority(p, src, now, prefs, s.cfg)
	season := s.season
	if season == "" {
		season = models.SeasonFor(now)
	}
	seasonal := Seasonal(p.Tags, season, s.cfg.OppositeSeasonPenalty)
	return Breakdown{
		Quality:        quality,
		Confidence:     confidence,
		Priority:       priority,
		Seasonal:       seasonal,
		Recommendation: Combine(quality, priority, seasonal, s.weights),
	}
}

// Score sets QualityScore and RecommendationScore on p.
func (s *Scorer) Score(p *models.Product, src config.SourceConfig, prefs *models.Preferences) {
	b := s.Breakdown(p, src, prefs)
	p.QualityScore = b.Quality
	p.RecommendationScore = b.Recommendation
}
