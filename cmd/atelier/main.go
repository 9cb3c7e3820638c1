// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

// Package main is the entry point for the Atelier server.
//
// Atelier ingests fashion items from a rate-limited marketplace search API,
// normalizes and scores them, keeps the catalog under a capacity limit, rotates
// each source's active set, and serves a diversified feed over HTTP.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config file and environment (Koanf v2)
//  2. Stores: product store (DuckDB, PostgreSQL or memory) and sync history (BadgerDB)
//  3. Fetcher: shared rate limiter, 429 retry policy and circuit breaker
//  4. Pipeline: plan, ingest, rotate and evict
//  5. HTTP API: chi router with feed, capacity and sync endpoints
//  6. Supervisor tree: history GC, sync scheduler and HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains,
// in-flight runs flush their current batch, and the stores are closed.
//
// # Example Usage
//
//	export RAKUTEN_APPLICATION_ID=your-app-id
//	export SYNC_INTERVAL=6h
//	./atelier
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/atelier/internal/api"
	"github.com/tomtom215/atelier/internal/capacity"
	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/diversity"
	"github.com/tomtom215/atelier/internal/fetcher"
	"github.com/tomtom215/atelier/internal/history"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/normalize"
	"github.com/tomtom215/atelier/internal/pipeline"
	"github.com/tomtom215/atelier/internal/rotation"
	"github.com/tomtom215/atelier/internal/scoring"
	"github.com/tomtom215/atelier/internal/store"
	"github.com/tomtom215/atelier/internal/supervisor"
	"github.com/tomtom215/atelier/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Atelier exited with error")
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_driver", cfg.Database.Driver).
		Int("sources", len(cfg.Sources)).
		Bool("sync_enabled", cfg.Sync.Enabled).
		Str("sync_mode", cfg.Sync.Mode).
		Msg("Starting Atelier with supervisor tree")

	products, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := products.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing product store")
		}
	}()

	hist, err := history.Open(cfg.History)
	if err != nil {
		return err
	}
	defer func() {
		if err := hist.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing history store")
		}
	}()

	fetch := newFetcher(cfg)

	scorer := scoring.New(cfg.Scoring)
	capMgr := capacity.NewManager(products, cfg.Capacity)
	pipe := pipeline.New(cfg, pipeline.Deps{
		Store:      products,
		History:    hist,
		Fetcher:    fetch,
		Normalizer: normalize.New(cfg.Normalize),
		Scorer:     scorer,
		Capacity:   capMgr,
		Rotation:   rotation.NewScheduler(products, hist),
	})

	handler := api.NewHandler(api.Deps{
		Config:   cfg,
		Store:    products,
		Capacity: capMgr,
		Sync:     pipe,
		Scorer:   scorer,
		Selector: diversity.NewSelector(logging.WithComponent("diversity")),
	})
	defer handler.Close()
	pipe.SetOnRunCompleted(handler.OnSyncCompleted)

	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Server))
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	if gc, ok := hist.(*history.BadgerStore); ok && cfg.History.GCInterval > 0 {
		tree.AddDataService(services.NewHistoryGCService(gc, cfg.History.GCInterval, cfg.History.GCRatio))
		logging.Info().Dur("interval", cfg.History.GCInterval).Msg("History value log GC added to supervisor tree")
	}

	if cfg.Sync.Enabled {
		tree.AddSyncService(services.NewSyncService(pipe, services.SyncSchedule{
			Interval:     cfg.Sync.Interval,
			RunOnStartup: cfg.Sync.RunOnStartup,
		}))
		logging.Info().
			Dur("interval", cfg.Sync.Interval).
			Bool("run_on_startup", cfg.Sync.RunOnStartup).
			Msg("Sync scheduler added to supervisor tree")
	} else {
		logging.Info().Msg("Scheduled sync disabled; runs can still be triggered via POST /api/v1/sync")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server added to supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within shutdown timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info().Msg("Atelier stopped")
	return nil
}

// newFetcher wires the shared rate limiter and retry policy into the API
// client, wrapped in a circuit breaker when enabled.
func newFetcher(cfg *config.Config) fetcher.Fetcher {
	limiter := fetcher.NewLimiter(cfg.RateLimit)
	client := fetcher.NewClient(cfg.Rakuten, limiter, fetcher.NewRetryPolicy(cfg.RateLimit))
	if !cfg.Breaker.Enabled {
		return client
	}
	logging.Info().
		Float64("failure_ratio", cfg.Breaker.FailureRatio).
		Dur("open_timeout", cfg.Breaker.Timeout).
		Msg("Circuit breaker enabled for item-search API")
	return fetcher.NewBreakerClient(client, cfg.Breaker)
}
