// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package scoring

import (
	"strings"

	"github.com/tomtom215/atelier/internal/models"
)

// seasonKeywords are matched as substrings of tags, so "春夏" counts for both
// spring and summer.
var seasonKeywords = map[models.Season][]string{
	models.Spring: {"春", "スプリング", "spring", "トレンチ", "パステル"},
	models.Summer: {"夏", "サマー", "summer", "サンダル", "リネン", "uv", "半袖", "ノースリーブ", "水着"},
	models.Autumn: {"秋", "オータム", "autumn", "ツイード", "コーデュロイ", "スエード"},
	models.Winter: {"冬", "ウィンター", "winter", "コート", "ダウン", "ウール", "ブーツ", "マフラー", "ニット"},
}

// DefaultOppositePenalty is subtracted per tag that belongs to the opposite season.
const DefaultOppositePenalty = 30

// Seasonal scores tags against season: no match 50, one 75, two or more 100,
// minus penalty for each tag of the opposite season, floored at 0.
func Seasonal(tags []string, season models.Season, penalty int) int {
	matches := countSeasonTags(tags, season)
	score := neutral
	switch {
	case matches >= 2:
		score = 100
	case matches == 1:
		score = 75
	}
	score -= penalty * countSeasonTags(tags, season.Opposite())
	return models.ClampScore(score)
}

func countSeasonTags(tags []string, season models.Season) int {
	n := 0
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, kw := range seasonKeywords[season] {
			if strings.Contains(lower, kw) {
				n++
				break
			}
		}
	}
	return n
}
