// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/models"
)

// Normalizer maps raw upstream items to Products.
type Normalizer struct {
	tagger *Tagger
	cfg    config.NormalizeConfig
	now    func() time.Time
}

// New creates a Normalizer with the built-in taxonomies.
func New(cfg config.NormalizeConfig) *Normalizer {
	return NewWithTagger(cfg, NewTagger(DefaultTaxonomies()))
}

// NewWithTagger creates a Normalizer with a custom tagger.
func NewWithTagger(cfg config.NormalizeConfig, tagger *Tagger) *Normalizer {
	if cfg.MaxTags <= 0 {
		cfg.MaxTags = 20
	}
	return &Normalizer{tagger: tagger, cfg: cfg, now: time.Now}
}

// WithClock returns a copy of n stamping products with now().
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	c := *n
	c.now = now
	return &c
}

// Tagger exposes the compiled tagger.
func (n *Normalizer) Tagger() *Tagger { return n.tagger }

// Normalize converts item into a new, active Product for src. Errors wrap
// ErrInvalidItem or ErrFilteredItem and carry a DropReason.
func (n *Normalizer) Normalize(item *models.RawItem, src config.SourceConfig) (*models.Product, error) {
	title := strings.TrimSpace(item.ItemName)
	switch {
	case item.ItemCode == "":
		return nil, invalid(ReasonNoCode)
	case title == "":
		return nil, invalid(ReasonNoTitle)
	case item.ItemPrice <= 0:
		return nil, invalid(ReasonNoPrice)
	}

	image := BestImage(item)
	if image == "" {
		return nil, invalid(ReasonNoImage)
	}

	if kw, ok := excludedKeyword(Fold(title), n.cfg.ExcludeKeywords); ok {
		return nil, filtered(ReasonUsedGoods, kw)
	}
	rating := float64(item.ReviewAverage)
	if lowRated(item.ReviewCount, rating, n.cfg.MinReviewCount, n.cfg.MinReviewAverage) {
		return nil, filtered(ReasonLowReviews, strconv.Itoa(item.ReviewCount)+" reviews")
	}

	matches := n.tagger.Matches(title + " " + item.ItemCaption + " " + item.ShopName)
	tags := make([]string, 0, len(matches)+len(src.Tags)+1)
	category := ""
	for _, m := range matches {
		tags = append(tags, m.Tag)
		if category == "" && m.Taxonomy == TaxonomyCategory {
			category = m.Tag
		}
	}
	if gender := genderTag(string(item.GenreID), title); gender != "" {
		tags = append(tags, gender)
	}
	tags = append(tags, src.Tags...)
	tags = models.NormalizeTags(tags)
	if len(tags) > n.cfg.MaxTags {
		tags = tags[:n.cfg.MaxTags]
	}
	if category == "" {
		category = src.Category
	}

	affiliate := item.AffiliateURL
	if affiliate == "" {
		affiliate = item.ItemURL
	}

	now := n.now()
	return &models.Product{
		ID:             models.ProductID(src.Name, item.ItemCode),
		Source:         src.Name,
		SourceItemCode: item.ItemCode,
		Title:          title,
		Brand:          src.Brand,
		SourceBrand:    item.ShopName,
		Price:          item.ItemPrice,
		ImageURL:       OptimizeImageURL(image, n.cfg.ImageSize),
		AffiliateURL:   affiliate,
		Tags:           tags,
		Category:       category,
		ReviewCount:    item.ReviewCount,
		ReviewAverage:  rating,
		BrandPriority:  src.Priority,
		IsActive:       true,
		LastSynced:     now,
		CreatedAt:      now,
	}, nil
}

// genderTag derives the gender tag from the genre, falling back to the title.
func genderTag(genreID, title string) string {
	if tag, ok := genderByGenre[genreID]; ok {
		return tag
	}
	switch {
	case strings.Contains(title, TagWomen):
		return TagWomen
	case strings.Contains(title, TagMen):
		return TagMen
	}
	return ""
}
