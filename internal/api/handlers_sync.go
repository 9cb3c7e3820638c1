// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/atelier/internal/pipeline"
)

// SyncAccepted is the payload of an accepted sync trigger.
type SyncAccepted struct {
	Trigger string   `json:"trigger"`
	Mode    string   `json:"mode,omitempty"`
	Sources []string `json:"sources,omitempty"`
	DryRun  bool     `json:"dry_run"`
}

// TriggerSync starts a run in the background and answers 202. The optional
// body is a pipeline.RunOptions. A run already in flight answers 409.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var opts pipeline.RunOptions
	if err := decodeBody(w, r, &opts); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, CodeInvalidBody, err.Error())
		return
	}
	if apiErr := validateRequest(&opts); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	for _, name := range opts.Sources {
		if _, ok := h.cfg.SourceByName(name); !ok {
			respondError(w, http.StatusBadRequest, CodeUnknownSource, "Unknown source: "+name)
			return
		}
	}
	if h.sync.Running() {
		respondError(w, http.StatusConflict, CodeSyncInProgress, "A sync run is already in progress")
		return
	}

	opts.Trigger = pipeline.TriggerManual
	h.runs.Add(1)
	go func() {
		defer h.runs.Done()
		sum, err := h.sync.Run(h.runCtx, opts)
		switch {
		case errors.Is(err, pipeline.ErrRunInProgress):
			h.logger.Info().Msg("Manual sync dropped: another run started first")
		case err != nil:
			h.logger.Error().Err(err).Msg("Manual sync run failed")
		default:
			h.logger.Info().Str("run_id", sum.RunID).Int("saved", sum.Saved()).Msg("Manual sync run finished")
		}
	}()

	respondData(w, http.StatusAccepted, SyncAccepted{
		Trigger: opts.Trigger,
		Mode:    opts.Mode,
		Sources: opts.Sources,
		DryRun:  opts.DryRun,
	}, start)
}

// LastSync returns the last finished run summary, or 404 before the first run.
func (h *Handler) LastSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	last := h.sync.Last()
	if last == nil {
		respondError(w, http.StatusNotFound, CodeNoRun, "No sync run has finished yet")
		return
	}
	respondData(w, http.StatusOK, last, start)
}
