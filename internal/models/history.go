// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package models

import "time"

// SyncHistory is the persisted per-source run state. It decides whether a
// source is due for rotation and how far its synced volume may grow.
type SyncHistory struct {
	Source           string    `json:"source"`
	LastSyncedAt     time.Time `json:"last_synced_at"`
	LastSyncedCount  int       `json:"last_synced_count"`
	CumulativeSynced int       `json:"cumulative_synced"`
	TargetCount      int       `json:"target_count"`
	Priority         int       `json:"priority"`
}

// NeverSynced reports whether the source has no completed run.
func (h SyncHistory) NeverSynced() bool {
	return h.LastSyncedAt.IsZero()
}

// DaysSince returns fractional days elapsed since the last sync.
// Sources that never synced report a very large value.
func (h SyncHistory) DaysSince(now time.Time) float64 {
	if h.NeverSynced() {
		return 1 << 20
	}
	return now.Sub(h.LastSyncedAt).Hours() / 24
}

// Record returns the history after a run that synced count products.
func (h SyncHistory) Record(at time.Time, count int) SyncHistory {
	h.LastSyncedAt = at
	h.LastSyncedCount = count
	h.CumulativeSynced += count
	return h
}
