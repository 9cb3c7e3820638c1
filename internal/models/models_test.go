// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package models

import (
	"slices"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestSeasonFor(t *testing.T) {
	tests := []struct {
		month time.Month
		want  Season
	}{
		{time.January, Winter},
		{time.February, Winter},
		{time.March, Spring},
		{time.May, Spring},
		{time.June, Summer},
		{time.August, Summer},
		{time.September, Autumn},
		{time.November, Autumn},
		{time.December, Winter},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			got := SeasonFor(time.Date(2026, tt.month, 15, 0, 0, 0, 0, time.UTC))
			if got != tt.want {
				t.Errorf("SeasonFor(%s) = %s, want %s", tt.month, got, tt.want)
			}
		})
	}
}

func TestSeasonOpposite(t *testing.T) {
	pairs := map[Season]Season{Spring: Autumn, Summer: Winter, Autumn: Spring, Winter: Summer}
	for s, want := range pairs {
		if got := s.Opposite(); got != want {
			t.Errorf("%s.Opposite() = %s, want %s", s, got, want)
		}
	}
}

func TestParseSeason(t *testing.T) {
	if s, err := ParseSeason(" Fall "); err != nil || s != Autumn {
		t.Errorf("ParseSeason(Fall) = %v, %v", s, err)
	}
	if _, err := ParseSeason("monsoon"); err == nil {
		t.Error("expected error for unknown season")
	}
}

func TestSyncHistoryRecord(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	h := SyncHistory{Source: "uniqlo"}

	if !h.NeverSynced() {
		t.Fatal("zero history should be never-synced")
	}

	h = h.Record(now, 120)
	h = h.Record(now.Add(48*time.Hour), 30)

	if h.CumulativeSynced != 150 {
		t.Errorf("CumulativeSynced = %d, want 150", h.CumulativeSynced)
	}
	if h.LastSyncedCount != 30 {
		t.Errorf("LastSyncedCount = %d, want 30", h.LastSyncedCount)
	}
	if got := h.DaysSince(now.Add(96 * time.Hour)); got != 2 {
		t.Errorf("DaysSince = %v, want 2", got)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"冬", " コート ", "", "冬", "ニット"})
	want := []string{"冬", "コート", "ニット"}
	if !slices.Equal(got, want) {
		t.Errorf("NormalizeTags() = %v, want %v", got, want)
	}
}

func TestProductClone(t *testing.T) {
	p := &Product{ID: "a:1", Tags: []string{"冬"}}
	c := p.Clone()
	c.Tags[0] = "夏"
	if p.Tags[0] != "冬" {
		t.Error("Clone shares the tag slice")
	}
	if (*Product)(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestClampScore(t *testing.T) {
	for in, want := range map[int]int{-5: 0, 0: 0, 55: 55, 100: 100, 130: 100} {
		if got := ClampScore(in); got != want {
			t.Errorf("ClampScore(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRawItemTolerantDecoding(t *testing.T) {
	payloads := []string{
		`{"itemCode":"shop:1","smallImageUrls":["https://a/s.jpg"],"reviewAverage":4.5,"genreId":"100371"}`,
		`{"itemCode":"shop:1","smallImageUrls":[{"imageUrl":"https://a/s.jpg"}],"reviewAverage":"4.5","genreId":100371}`,
	}
	for _, payload := range payloads {
		var item RawItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", payload, err)
		}
		if item.SmallImageURLs.First() != "https://a/s.jpg" {
			t.Errorf("SmallImageURLs = %v", item.SmallImageURLs)
		}
		if item.ReviewAverage != 4.5 {
			t.Errorf("ReviewAverage = %v, want 4.5", item.ReviewAverage)
		}
		if item.GenreID != "100371" {
			t.Errorf("GenreID = %q, want 100371", item.GenreID)
		}
	}

	var empty RawItem
	if err := json.Unmarshal([]byte(`{"reviewAverage":""}`), &empty); err != nil || empty.ReviewAverage != 0 {
		t.Errorf("empty rating: %v, %v", empty.ReviewAverage, err)
	}
}
