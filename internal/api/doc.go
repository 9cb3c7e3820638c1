// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package api provides the HTTP surface of Atelier.

Routes:

	GET  /healthz            liveness
	GET  /readyz             product store ping
	GET  /metrics            Prometheus exposition
	GET  /api/v1/feed        diversified feed of active products
	POST /api/v1/feed        same, re-scored with personalization preferences
	GET  /api/v1/capacity    current capacity status
	POST /api/v1/sync        start an asynchronous sync run (409 while one runs)
	GET  /api/v1/sync/last   summary of the last finished run

Every JSON response uses the models.APIResponse envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","query_time_ms":3}}
	{"status":"error","data":null,"error":{"code":"VALIDATION_ERROR","message":"..."}}

Middleware Stack:

Request ID, real client IP, panic recovery, CORS and Prometheus request
metrics apply to every route. The /api/v1 group adds per-IP rate limiting
(go-chi/httprate) and security headers.

Feed candidates are cached for server.feed_cache_ttl. Register
Handler.OnSyncCompleted with the pipeline so a finished run clears them.

Example:

	handler := api.NewHandler(api.Deps{Config: cfg, Store: st, Capacity: capMgr, Sync: pipe})
	defer handler.Close()
	pipe.SetOnRunCompleted(handler.OnSyncCompleted)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Server))
	srv := &http.Server{Addr: ":8080", Handler: router.SetupChi()}
*/
package api
