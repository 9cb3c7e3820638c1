// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

// Package logging provides centralized zerolog-based structured logging for Atelier.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("source", "uniqlo").Int("saved", 42).Msg("Source finished")
//	logging.Err(err).Msg("Batch upsert failed")
//
// # Configuration
//
// Environment Variables (mapped through internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Context
//
// A sync run carries its id in the context; HTTP handlers carry the request id:
//
//	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
//	logging.Ctx(ctx).Info().Msg("Rotation finished")
//
// SyncLogger wraps the common pipeline log lines so that every component reports
// source, page and batch failures with the same field names.
//
// # slog
//
// SlogHandler adapts zerolog to slog.Handler for the supervisor's sutureslog hook.
//
// Always terminate event chains with Msg() or Send(); an unterminated chain is never written.
package logging
