// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: reuses or generates an X-Request-ID and stores it in the
    request context for logging.Ctx
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by the chi route pattern so path parameters do not explode cardinality

Both are plain func(http.Handler) http.Handler values and can be passed to
chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
