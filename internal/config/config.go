// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package config

import (
	"time"
)

// Config holds all application configuration.
// Loaded via LoadWithKoanf: defaults, then an optional YAML file, then environment variables.
type Config struct {
	Rakuten   RakutenConfig   `koanf:"rakuten"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Capacity  CapacityConfig  `koanf:"capacity"`
	Sync      SyncConfig      `koanf:"sync"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Diversity DiversityConfig `koanf:"diversity"`
	Normalize NormalizeConfig `koanf:"normalize"`
	Database  DatabaseConfig  `koanf:"database"`
	History   HistoryConfig   `koanf:"history"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`

	// Sources is the declarative source table. A YAML list replaces the built-in table.
	Sources []SourceConfig `koanf:"sources"`
}

// RakutenConfig configures the upstream item-search API.
type RakutenConfig struct {
	BaseURL       string        `koanf:"base_url"`
	ApplicationID string        `koanf:"application_id"`
	AffiliateID   string        `koanf:"affiliate_id"`
	GenreID       string        `koanf:"genre_id"`
	Hits          int           `koanf:"hits"`
	Sort          string        `koanf:"sort"`
	MinPrice      int           `koanf:"min_price"`
	Timeout       time.Duration `koanf:"timeout"`
	UserAgent     string        `koanf:"user_agent"`
}

// RateLimitConfig configures the shared call budget and the 429 retry policy.
type RateLimitConfig struct {
	// Strategy is "fixed" (counter reset every Window) or "token" (token bucket).
	Strategy       string        `koanf:"strategy"`
	CallsPerWindow int           `koanf:"calls_per_window"`
	Window         time.Duration `koanf:"window"`
	MaxWait        time.Duration `koanf:"max_wait"`

	// Backoff is "exponential" or "fixed".
	Backoff    string        `koanf:"backoff"`
	MaxRetries int           `koanf:"max_retries"`
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxDelay   time.Duration `koanf:"max_delay"`
}

// BreakerConfig configures the circuit breaker around the upstream API.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// CapacityConfig configures capacity states and tiered eviction.
type CapacityConfig struct {
	MaxProducts   int     `koanf:"max_products"`
	WarningRatio  float64 `koanf:"warning_ratio"`
	CriticalRatio float64 `koanf:"critical_ratio"`
	// CriticalCount is an absolute critical threshold; 0 disables it.
	CriticalCount int     `koanf:"critical_count"`
	TargetRatio   float64 `koanf:"target_ratio"`
	WarningScale  float64 `koanf:"warning_scale"`

	StaleAfter        time.Duration `koanf:"stale_after"`
	LowPriorityCutoff int           `koanf:"low_priority_cutoff"`
	DeleteBatchSize   int           `koanf:"delete_batch_size"`
	// MaxDeletePerRun caps deletions in one pass; 0 means unlimited.
	MaxDeletePerRun int `koanf:"max_delete_per_run"`
}

// SyncConfig configures pipeline runs.
type SyncConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Interval     time.Duration `koanf:"interval"`
	RunOnStartup bool          `koanf:"run_on_startup"`
	RunTimeout   time.Duration `koanf:"run_timeout"`

	// Mode is "mvp" (top priority sources), "extended" (all) or "test" (first TestSourceLimit).
	Mode            string   `koanf:"mode"`
	TestSourceLimit int      `koanf:"test_source_limit"`
	Sources         []string `koanf:"sources"`

	Concurrency       int  `koanf:"concurrency"`
	BatchSize         int  `koanf:"batch_size"`
	DryRun            bool `koanf:"dry_run"`
	MinProducts       int  `koanf:"min_products"`
	MaxPageFailures   int  `koanf:"max_page_failures"`
	MaxPagesPerSource int  `koanf:"max_pages_per_source"`
	AssessEvery       int  `koanf:"assess_every"`
}

// ScoringConfig configures score weights.
type ScoringConfig struct {
	QualityWeight  float64 `koanf:"quality_weight"`
	PriorityWeight float64 `koanf:"priority_weight"`
	SeasonalWeight float64 `koanf:"seasonal_weight"`

	MaxPriorityTier       int     `koanf:"max_priority_tier"`
	PriorityStep          int     `koanf:"priority_step"`
	FreshDays             int     `koanf:"fresh_days"`
	StaleDays             int     `koanf:"stale_days"`
	FreshnessWeight       float64 `koanf:"freshness_weight"`
	PriceFitBonus         int     `koanf:"price_fit_bonus"`
	PersonalizationWeight float64 `koanf:"personalization_weight"`
	OppositeSeasonPenalty int     `koanf:"opposite_season_penalty"`
}

// DiversityConfig holds the default feed constraints.
type DiversityConfig struct {
	WindowSize      int `koanf:"window_size"`
	MaxPerCategory  int `koanf:"max_per_category"`
	MaxPerBrand     int `koanf:"max_per_brand"`
	MaxPerPriceBand int `koanf:"max_per_price_band"`
	MaxPerStyle     int `koanf:"max_per_style"`
	FeedLimit       int `koanf:"feed_limit"`
	CandidatePool   int `koanf:"candidate_pool"`
}

// NormalizeConfig configures item normalization and filtering.
type NormalizeConfig struct {
	MaxTags          int      `koanf:"max_tags"`
	ExcludeKeywords  []string `koanf:"exclude_keywords"`
	MinReviewCount   int      `koanf:"min_review_count"`
	MinReviewAverage float64  `koanf:"min_review_average"`
	ImageSize        string   `koanf:"image_size"`
}

// DatabaseConfig selects and tunes the product store.
type DatabaseConfig struct {
	// Driver is "duckdb" (embedded, default), "postgres" or "memory".
	Driver       string        `koanf:"driver"`
	Path         string        `koanf:"path"`
	DSN          string        `koanf:"dsn"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// HistoryConfig configures the sync history store.
type HistoryConfig struct {
	Path       string `koanf:"path"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`

	// GCInterval schedules BadgerDB value-log GC; 0 disables it.
	GCInterval time.Duration `koanf:"gc_interval"`
	GCRatio    float64       `koanf:"gc_ratio"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// FeedCacheTTL keeps feed candidates between sync runs; 0 disables caching.
	FeedCacheTTL time.Duration `koanf:"feed_cache_ttl"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Sync modes.
const (
	ModeMVP      = "mvp"
	ModeExtended = "extended"
	ModeTest     = "test"
)

// Database drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Rate-limit strategies and backoff kinds.
const (
	StrategyFixedWindow = "fixed"
	StrategyTokenBucket = "token"
	BackoffExponential  = "exponential"
	BackoffFixed        = "fixed"
)

// EnabledSources returns the sources that are not disabled, in table order.
func (c *Config) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources))
	for _, s := range c.Sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

// SourceByName looks up a source by name.
func (c *Config) SourceByName(name string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceConfig{}, false
}
