// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package capacity

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atelier/internal/config"
)

// State is the catalog fill level.
type State int

const (
	Safe State = iota
	Warning
	Critical
)

// DefaultWarningScale is the ingestion volume multiplier in Warning.
const DefaultWarningScale = 0.5

func (s State) String() string {
	switch s {
	case Safe:
		return "safe"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the state name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a state name written by MarshalJSON.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "safe":
		*s = Safe
	case "warning":
		*s = Warning
	case "critical":
		*s = Critical
	default:
		return fmt.Errorf("unknown capacity state %q", name)
	}
	return nil
}

// VolumeScale is the ingestion volume multiplier: 1 in Safe, 0.5 in Warning,
// 0 in Critical.
func (s State) VolumeScale() float64 {
	return s.scale(DefaultWarningScale)
}

func (s State) scale(warning float64) float64 {
	switch s {
	case Safe:
		return 1
	case Warning:
		return warning
	default:
		return 0
	}
}

// Status is one capacity assessment.
type Status struct {
	Total    int     `json:"total"`
	Active   int     `json:"active"`
	Inactive int     `json:"inactive"`
	Max      int     `json:"max"`
	Usage    float64 `json:"usage"`
	State    State   `json:"state"`
	// Scale is the configured VolumeScale for State.
	Scale float64 `json:"scale"`
}

// Classify maps a total to a state. Either the usage ratio or the absolute
// critical count can trigger Critical.
func Classify(total int, cfg config.CapacityConfig) State {
	usage := float64(total) / float64(cfg.MaxProducts)
	switch {
	case usage >= cfg.CriticalRatio:
		return Critical
	case cfg.CriticalCount > 0 && total >= cfg.CriticalCount:
		return Critical
	case usage >= cfg.WarningRatio:
		return Warning
	default:
		return Safe
	}
}

func newStatus(total, active int, cfg config.CapacityConfig) Status {
	state := Classify(total, cfg)
	return Status{
		Total:    total,
		Active:   active,
		Inactive: total - active,
		Max:      cfg.MaxProducts,
		Usage:    float64(total) / float64(cfg.MaxProducts),
		State:    state,
		Scale:    state.scale(cfg.WarningScale),
	}
}
