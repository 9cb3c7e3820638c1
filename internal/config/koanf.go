// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config files searched in order; the first one found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/atelier/config.yaml",
	"/etc/atelier/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// SourcesFileEnvVar points at a separate YAML source table.
const SourcesFileEnvVar = "SOURCES_FILE"

// defaultUsedGoodsKeywords excludes second-hand and outlet listings.
var defaultUsedGoodsKeywords = []string{"中古", "USED", "リユース", "アウトレット", "B級品", "訳あり", "ジャンク"}

// Defaults returns the built-in configuration without reading any file or
// environment variable.
func Defaults() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with all defaults applied.
// Defaults are loaded first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Rakuten: RakutenConfig{
			BaseURL:   "https://app.rakuten.co.jp/services/api/IchibaItem/Search/20220601",
			GenreID:   "100371", // women's fashion
			Hits:      30,
			Sort:      "-updateTimestamp",
			MinPrice:  1000,
			Timeout:   30 * time.Second,
			UserAgent: "atelier-catalog-sync/1.0",
		},
		RateLimit: RateLimitConfig{
			Strategy:       StrategyFixedWindow,
			CallsPerWindow: 30,
			Window:         time.Minute,
			MaxWait:        2 * time.Minute,
			Backoff:        BackoffExponential,
			MaxRetries:     5,
			BaseDelay:      time.Second,
			MaxDelay:       30 * time.Second,
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Capacity: CapacityConfig{
			MaxProducts:       40000,
			WarningRatio:      0.60,
			CriticalRatio:     0.80,
			CriticalCount:     38000,
			TargetRatio:       0.70,
			WarningScale:      0.5,
			StaleAfter:        7 * 24 * time.Hour,
			LowPriorityCutoff: 5,
			DeleteBatchSize:   100,
			MaxDeletePerRun:   0,
		},
		Sync: SyncConfig{
			Enabled:           true,
			Interval:          6 * time.Hour,
			RunOnStartup:      false,
			RunTimeout:        time.Hour,
			Mode:              ModeExtended,
			TestSourceLimit:   1,
			Concurrency:       3,
			BatchSize:         100,
			DryRun:            false,
			MinProducts:       100,
			MaxPageFailures:   3,
			MaxPagesPerSource: 100,
			AssessEvery:       5,
		},
		Scoring: ScoringConfig{
			QualityWeight:         0.35,
			PriorityWeight:        0.40,
			SeasonalWeight:        0.25,
			MaxPriorityTier:       7,
			PriorityStep:          5,
			FreshDays:             7,
			StaleDays:             60,
			FreshnessWeight:       0.2,
			PriceFitBonus:         10,
			PersonalizationWeight: 0.4,
			OppositeSeasonPenalty: 30,
		},
		Diversity: DiversityConfig{
			WindowSize:      5,
			MaxPerCategory:  2,
			MaxPerBrand:     2,
			MaxPerPriceBand: 3,
			MaxPerStyle:     2,
			FeedLimit:       50,
			CandidatePool:   200,
		},
		Normalize: NormalizeConfig{
			MaxTags:          20,
			ExcludeKeywords:  append([]string(nil), defaultUsedGoodsKeywords...),
			MinReviewCount:   3,
			MinReviewAverage: 3.5,
			ImageSize:        "800x800",
		},
		Database: DatabaseConfig{
			Driver:       DriverDuckDB,
			Path:         "/data/atelier.duckdb",
			MaxOpenConns: 4,
			QueryTimeout: 30 * time.Second,
		},
		History: HistoryConfig{
			Path:       "/data/history",
			SyncWrites: true,
			GCInterval: time.Hour,
			GCRatio:    0.5,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			FeedCacheTTL:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Sources: defaultSources(),
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Config file (optional YAML)
//  3. Environment variables (highest priority)
//
// A separate source table may be supplied with SOURCES_FILE; it replaces the table
// from the defaults or the config file.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// RAKUTEN_APPLICATION_ID -> rakuten.application_id
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if path := os.Getenv(SourcesFileEnvVar); path != "" {
		sources, err := LoadSourcesFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Sources = sources
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load is the entry point used by main.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"sync.sources",
	"server.cors_origins",
	"normalize.exclude_keywords",
}

// processSliceFields converts comma-separated strings into slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"rakuten_base_url":       "rakuten.base_url",
	"rakuten_application_id": "rakuten.application_id",
	"rakuten_affiliate_id":   "rakuten.affiliate_id",
	"rakuten_genre_id":       "rakuten.genre_id",
	"rakuten_hits":           "rakuten.hits",
	"rakuten_min_price":      "rakuten.min_price",
	"rakuten_timeout":        "rakuten.timeout",

	"rate_limit_strategy":    "rate_limit.strategy",
	"rate_limit_calls":       "rate_limit.calls_per_window",
	"rate_limit_window":      "rate_limit.window",
	"rate_limit_max_wait":    "rate_limit.max_wait",
	"rate_limit_backoff":     "rate_limit.backoff",
	"rate_limit_max_retries": "rate_limit.max_retries",
	"rate_limit_base_delay":  "rate_limit.base_delay",
	"rate_limit_max_delay":   "rate_limit.max_delay",

	"breaker_enabled": "breaker.enabled",
	"breaker_timeout": "breaker.timeout",

	"capacity_max_products":        "capacity.max_products",
	"capacity_warning_ratio":       "capacity.warning_ratio",
	"capacity_critical_ratio":      "capacity.critical_ratio",
	"capacity_critical_count":      "capacity.critical_count",
	"capacity_target_ratio":        "capacity.target_ratio",
	"capacity_warning_scale":       "capacity.warning_scale",
	"capacity_stale_after":         "capacity.stale_after",
	"capacity_low_priority_cutoff": "capacity.low_priority_cutoff",
	"capacity_delete_batch_size":   "capacity.delete_batch_size",
	"capacity_max_delete_per_run":  "capacity.max_delete_per_run",

	"sync_enabled":        "sync.enabled",
	"sync_interval":       "sync.interval",
	"sync_run_on_startup": "sync.run_on_startup",
	"sync_run_timeout":    "sync.run_timeout",
	"sync_mode":           "sync.mode",
	"sync_sources":        "sync.sources",
	"sync_concurrency":    "sync.concurrency",
	"sync_batch_size":     "sync.batch_size",
	"sync_dry_run":        "sync.dry_run",
	"dry_run":             "sync.dry_run",
	"sync_min_products":   "sync.min_products",

	"scoring_quality_weight":  "scoring.quality_weight",
	"scoring_priority_weight": "scoring.priority_weight",
	"scoring_seasonal_weight": "scoring.seasonal_weight",

	"feed_limit":           "diversity.feed_limit",
	"feed_window_size":     "diversity.window_size",
	"normalize_max_tags":   "normalize.max_tags",
	"exclude_keywords":     "normalize.exclude_keywords",
	"normalize_min_rating": "normalize.min_review_average",

	"db_driver":        "database.driver",
	"duckdb_path":      "database.path",
	"database_url":     "database.dsn",
	"db_query_timeout": "database.query_timeout",

	"history_path":        "history.path",
	"history_in_memory":   "history.in_memory",
	"history_gc_interval": "history.gc_interval",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"rate_limit_reqs":       "server.rate_limit_reqs",
	"rate_limit_api_window": "server.rate_limit_window",
	"cors_origins":          "server.cors_origins",
	"feed_cache_ttl":        "server.feed_cache_ttl",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped so unrelated environment
// variables cannot leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
