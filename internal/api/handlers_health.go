// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package api

import (
	"context"
	"net/http"
	"time"
)

// readyTimeout bounds the store ping of the readiness probe.
const readyTimeout = 2 * time.Second

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status         string  `json:"status"`
	Uptime         float64 `json:"uptime_seconds"`
	SyncRunning    bool    `json:"sync_running"`
	StoreReachable *bool   `json:"store_reachable,omitempty"`
}

// Healthz reports liveness. It never touches the store.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondData(w, http.StatusOK, HealthStatus{
		Status:      "ok",
		Uptime:      time.Since(h.startTime).Seconds(),
		SyncRunning: h.sync != nil && h.sync.Running(),
	}, start)
}

// Readyz reports readiness: 200 when the product store answers a ping.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondServerError(w, r, http.StatusServiceUnavailable, CodeStoreUnavailable, "Product store is unavailable", err)
		return
	}
	reachable := true
	respondData(w, http.StatusOK, HealthStatus{
		Status:         "ready",
		Uptime:         time.Since(h.startTime).Seconds(),
		SyncRunning:    h.sync != nil && h.sync.Running(),
		StoreReachable: &reachable,
	}, start)
}
