// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/atelier/internal/validation"
)

// SourceConfig is one external catalog partition: a brand or keyword query with
// its own priority, volume limits and rotation period. Read-only at runtime.
type SourceConfig struct {
	Name  string `koanf:"name" json:"name" validate:"required,max=64,sourcename"`
	Brand string `koanf:"brand" json:"brand" validate:"required,max=128"`

	// ShopCode or Keywords selects the upstream query; one of them is required.
	ShopCode string   `koanf:"shop_code" json:"shop_code,omitempty" validate:"required_without=Keywords,max=64"`
	Keywords []string `koanf:"keywords" json:"keywords,omitempty" validate:"required_without=ShopCode,dive,required"`
	GenreID  string   `koanf:"genre_id" json:"genre_id,omitempty" validate:"omitempty,numeric"`

	// Priority is the brand priority tier; lower means more important.
	Priority  int      `koanf:"priority" json:"priority" validate:"gte=0,lte=7"`
	Category  string   `koanf:"category" json:"category,omitempty"`
	TargetAge string   `koanf:"target_age" json:"target_age,omitempty"`
	Tags      []string `koanf:"tags" json:"tags,omitempty" validate:"max=10,dive,required"`

	PriceRange PriceRange `koanf:"price_range" json:"price_range"`

	InitialProducts    int `koanf:"initial_products" json:"initial_products" validate:"gte=0"`
	MaxStoredCount     int `koanf:"max_stored_count" json:"max_stored_count" validate:"gte=0"`
	TargetActiveCount  int `koanf:"target_active_count" json:"target_active_count" validate:"gte=0"`
	RotationPeriodDays int `koanf:"rotation_period_days" json:"rotation_period_days" validate:"gte=1,lte=365"`

	Disabled bool `koanf:"disabled" json:"disabled,omitempty"`
}

// PriceRange is the source's price band in yen. Max 0 means unbounded.
type PriceRange struct {
	Min int `koanf:"min" json:"min" validate:"gte=0"`
	Max int `koanf:"max" json:"max" validate:"omitempty,gtefield=Min"`
}

// Contains reports whether price falls inside the band.
func (r PriceRange) Contains(price int) bool {
	if price < r.Min {
		return false
	}
	return r.Max == 0 || price <= r.Max
}

// Query returns the keyword string sent upstream.
func (s SourceConfig) Query() string {
	return strings.Join(s.Keywords, " ")
}

// Named price bands used by the built-in table.
var (
	PriceLow        = PriceRange{Min: 0, Max: 5000}
	PriceLowMiddle  = PriceRange{Min: 3000, Max: 10000}
	PriceMiddle     = PriceRange{Min: 8000, Max: 20000}
	PriceMiddleHigh = PriceRange{Min: 15000, Max: 40000}
	PriceHigh       = PriceRange{Min: 30000}
)

// defaultSources is the built-in source table used when no file provides one.
func defaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name: "uniqlo", Brand: "UNIQLO", ShopCode: "uniqlo", Priority: 0,
			Category: "basic", TargetAge: "20-40", Tags: []string{"ベーシック", "シンプル", "機能的"},
			PriceRange: PriceLow, InitialProducts: 1000, MaxStoredCount: 5000,
			TargetActiveCount: 500, RotationPeriodDays: 2,
		},
		{
			Name: "gu", Brand: "GU", ShopCode: "gu-official", Priority: 0,
			Category: "basic", TargetAge: "20-30", Tags: []string{"トレンド", "プチプラ", "カジュアル"},
			PriceRange: PriceLow, InitialProducts: 1000, MaxStoredCount: 5000,
			TargetActiveCount: 500, RotationPeriodDays: 2,
		},
		{
			Name: "muji", Brand: "無印良品", Keywords: []string{"無印良品", "MUJI"}, Priority: 1,
			Category: "basic", TargetAge: "25-40", Tags: []string{"シンプル", "ナチュラル", "ベーシック"},
			PriceRange: PriceLowMiddle, InitialProducts: 800, MaxStoredCount: 3000,
			TargetActiveCount: 300, RotationPeriodDays: 3,
		},
		{
			Name: "zara", Brand: "ZARA", Keywords: []string{"ZARA"}, Priority: 2,
			Category: "trend", TargetAge: "20-35", Tags: []string{"トレンド", "モード", "きれいめ"},
			PriceRange: PriceLowMiddle, InitialProducts: 600, MaxStoredCount: 2500,
			TargetActiveCount: 250, RotationPeriodDays: 3,
		},
		{
			Name: "earth", Brand: "earth music&ecology", Keywords: []string{"earth music&ecology"}, Priority: 3,
			Category: "natural", TargetAge: "20-30", Tags: []string{"ナチュラル", "フェミニン"},
			PriceRange: PriceLowMiddle, InitialProducts: 400, MaxStoredCount: 1500,
			TargetActiveCount: 150, RotationPeriodDays: 5,
		},
		{
			Name: "united-arrows", Brand: "UNITED ARROWS", Keywords: []string{"ユナイテッドアローズ"}, Priority: 4,
			Category: "select", TargetAge: "25-45", Tags: []string{"きれいめ", "大人", "上品"},
			PriceRange: PriceMiddleHigh, InitialProducts: 300, MaxStoredCount: 1200,
			TargetActiveCount: 100, RotationPeriodDays: 7,
		},
	}
}

// LoadSourcesFile reads a YAML source table ("sources:" list) from path.
func LoadSourcesFile(path string) ([]SourceConfig, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load sources file %s: %w", path, err)
	}
	var sources []SourceConfig
	if err := k.Unmarshal("sources", &sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
	}
	if err := ValidateSources(sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// ValidateSources validates each source and requires unique names.
func ValidateSources(sources []SourceConfig) error {
	if len(sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}
	seen := make(map[string]struct{}, len(sources))
	for i := range sources {
		s := &sources[i]
		if verr := validation.ValidateStruct(s); verr != nil {
			return fmt.Errorf("source %d (%q): %w", i, s.Name, verr)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}
