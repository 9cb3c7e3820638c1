// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package api

import (
	"net/http"
	"time"
)

// Capacity returns the current capacity status.
func (h *Handler) Capacity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status, err := h.capacity.Assess(r.Context())
	if err != nil {
		respondServerError(w, r, http.StatusInternalServerError, CodeQueryFailed, "Failed to assess capacity", err)
		return
	}
	respondData(w, http.StatusOK, status, start)
}
