// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package config

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/tomtom215/atelier/internal/logging"
)

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateRakuten,
		c.validateRateLimit,
		c.validateBreaker,
		c.validateCapacity,
		c.validateSync,
		c.validateScoring,
		c.validateDiversity,
		c.validateDatabase,
		c.validateServer,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return ValidateSources(c.Sources)
}

func (c *Config) validateRakuten() error {
	if err := validateHTTPURL(c.Rakuten.BaseURL, "RAKUTEN_BASE_URL"); err != nil {
		return err
	}
	if c.Sync.Enabled && c.Rakuten.ApplicationID == "" {
		return fmt.Errorf("RAKUTEN_APPLICATION_ID is required when SYNC_ENABLED=true")
	}
	if c.Rakuten.Hits < 1 || c.Rakuten.Hits > 30 {
		return fmt.Errorf("RAKUTEN_HITS must be between 1 and 30")
	}
	if c.Rakuten.Timeout <= 0 {
		return fmt.Errorf("RAKUTEN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	rl := c.RateLimit
	if rl.Strategy != StrategyFixedWindow && rl.Strategy != StrategyTokenBucket {
		return fmt.Errorf("RATE_LIMIT_STRATEGY must be %q or %q", StrategyFixedWindow, StrategyTokenBucket)
	}
	if rl.CallsPerWindow < 1 {
		return fmt.Errorf("RATE_LIMIT_CALLS must be at least 1")
	}
	if rl.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if rl.Backoff != BackoffExponential && rl.Backoff != BackoffFixed {
		return fmt.Errorf("RATE_LIMIT_BACKOFF must be %q or %q", BackoffExponential, BackoffFixed)
	}
	if rl.MaxRetries < 0 || rl.MaxRetries > 10 {
		return fmt.Errorf("RATE_LIMIT_MAX_RETRIES must be between 0 and 10")
	}
	if rl.BaseDelay <= 0 {
		return fmt.Errorf("RATE_LIMIT_BASE_DELAY must be positive")
	}
	if rl.MaxDelay < rl.BaseDelay {
		return fmt.Errorf("RATE_LIMIT_MAX_DELAY must be >= RATE_LIMIT_BASE_DELAY")
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be in (0, 1]")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateCapacity() error {
	cp := c.Capacity
	if cp.MaxProducts < 1 {
		return fmt.Errorf("CAPACITY_MAX_PRODUCTS must be at least 1")
	}
	if !(cp.WarningRatio > 0 && cp.WarningRatio < cp.CriticalRatio && cp.CriticalRatio <= 1) {
		return fmt.Errorf("capacity ratios must satisfy 0 < warning (%.2f) < critical (%.2f) <= 1",
			cp.WarningRatio, cp.CriticalRatio)
	}
	if cp.TargetRatio <= 0 || cp.TargetRatio >= cp.CriticalRatio {
		return fmt.Errorf("CAPACITY_TARGET_RATIO must be in (0, critical ratio)")
	}
	if cp.WarningScale <= 0 || cp.WarningScale > 1 {
		return fmt.Errorf("CAPACITY_WARNING_SCALE must be in (0, 1]")
	}
	if cp.CriticalCount < 0 {
		return fmt.Errorf("CAPACITY_CRITICAL_COUNT must not be negative")
	}
	if cp.DeleteBatchSize < 1 {
		return fmt.Errorf("CAPACITY_DELETE_BATCH_SIZE must be at least 1")
	}
	if cp.StaleAfter <= 0 {
		return fmt.Errorf("CAPACITY_STALE_AFTER must be positive")
	}
	return nil
}

func (c *Config) validateSync() error {
	s := c.Sync
	if !slices.Contains([]string{ModeMVP, ModeExtended, ModeTest}, s.Mode) {
		return fmt.Errorf("SYNC_MODE must be one of: %s, %s, %s", ModeMVP, ModeExtended, ModeTest)
	}
	if s.Concurrency < 1 || s.Concurrency > 16 {
		return fmt.Errorf("SYNC_CONCURRENCY must be between 1 and 16")
	}
	if s.BatchSize < 1 || s.BatchSize > 1000 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be between 1 and 1000")
	}
	if s.Enabled && s.Interval < time.Minute {
		return fmt.Errorf("SYNC_INTERVAL must be at least 1m")
	}
	if s.MaxPagesPerSource < 1 {
		return fmt.Errorf("sync.max_pages_per_source must be at least 1")
	}
	if s.AssessEvery < 1 {
		return fmt.Errorf("sync.assess_every must be at least 1")
	}
	for _, name := range s.Sources {
		if _, ok := c.SourceByName(name); !ok {
			return fmt.Errorf("SYNC_SOURCES references unknown source %q", name)
		}
	}
	return nil
}

func (c *Config) validateScoring() error {
	sc := c.Scoring
	for name, w := range map[string]float64{
		"quality_weight":  sc.QualityWeight,
		"priority_weight": sc.PriorityWeight,
		"seasonal_weight": sc.SeasonalWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("scoring.%s must be in [0, 1]", name)
		}
	}
	sum := sc.QualityWeight + sc.PriorityWeight + sc.SeasonalWeight
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("scoring weights must sum to 1, got %.4f", sum)
	}
	if sc.MaxPriorityTier < 1 {
		return fmt.Errorf("scoring.max_priority_tier must be at least 1")
	}
	if sc.StaleDays <= sc.FreshDays {
		return fmt.Errorf("scoring.stale_days must be greater than scoring.fresh_days")
	}
	return nil
}

func (c *Config) validateDiversity() error {
	d := c.Diversity
	if d.WindowSize < 1 {
		return fmt.Errorf("FEED_WINDOW_SIZE must be at least 1")
	}
	if d.MaxPerCategory < 1 || d.MaxPerBrand < 1 || d.MaxPerPriceBand < 1 || d.MaxPerStyle < 1 {
		return fmt.Errorf("diversity per-dimension maxima must be at least 1")
	}
	if d.FeedLimit < 1 || d.CandidatePool < d.FeedLimit {
		return fmt.Errorf("diversity.candidate_pool must be >= FEED_LIMIT >= 1")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DB_DRIVER=duckdb")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	case DriverMemory:
		logging.Warn().Msg("DB_DRIVER=memory: catalog will not survive restarts")
	default:
		return fmt.Errorf("DB_DRIVER must be one of: duckdb, postgres, memory")
	}
	if !c.History.InMemory && c.History.Path == "" {
		return fmt.Errorf("HISTORY_PATH is required unless HISTORY_IN_MEMORY=true")
	}
	if c.History.GCInterval > 0 && (c.History.GCRatio <= 0 || c.History.GCRatio >= 1) {
		return fmt.Errorf("history.gc_ratio must be in (0, 1)")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}
