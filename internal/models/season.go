// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package models

import (
	"fmt"
	"strings"
	"time"
)

// Season is a calendar season used for seasonal scoring.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// SeasonFor maps a date to a season: Mar-May spring, Jun-Aug summer,
// Sep-Nov autumn, Dec-Feb winter.
func SeasonFor(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Autumn
	default:
		return Winter
	}
}

// Opposite returns the season across the calendar.
func (s Season) Opposite() Season {
	switch s {
	case Spring:
		return Autumn
	case Summer:
		return Winter
	case Autumn:
		return Spring
	default:
		return Summer
	}
}

// ParseSeason parses a season name.
func ParseSeason(s string) (Season, error) {
	switch Season(strings.ToLower(strings.TrimSpace(s))) {
	case Spring:
		return Spring, nil
	case Summer:
		return Summer, nil
	case Autumn, "fall":
		return Autumn, nil
	case Winter:
		return Winter, nil
	}
	return "", fmt.Errorf("unknown season %q", s)
}
