// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package normalize

import (
	"slices"
	"testing"
)

func TestTaggerTags(t *testing.T) {
	tagger := NewTagger(DefaultTaxonomies())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"category and material", "デニムスカート", []string{"ボトムス", "スカート", "デニム"}},
		{"case insensitive latin", "Casual COTTON Dress", []string{"ワンピース", "カジュアル", "コットン"}},
		{"full-width latin", "ＵＶカット パーカー", []string{"トップス", "UV対策"}},
		{"short pattern needs boundary", "GUCCI inspired bag", []string{}},
		{"short pattern at boundary", "GU ワイドパンツ", []string{"ボトムス", "GU"}},
		{"size token", "ニット 3L", []string{"トップス", "ニット", "大きいサイズ"}},
		{"nothing", "ギフトカード", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tagger.Tags(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTaggerMatchesReportsTaxonomy(t *testing.T) {
	matches := NewTagger(DefaultTaxonomies()).Matches("リネン シャツ")
	if len(matches) != 2 {
		t.Fatalf("Matches() = %v", matches)
	}
	if matches[0].Taxonomy != TaxonomyCategory || matches[1].Taxonomy != TaxonomyMaterial {
		t.Errorf("taxonomies = %s, %s", matches[0].Taxonomy, matches[1].Taxonomy)
	}
}

func TestFold(t *testing.T) {
	if got := Fold("ＺＡＲＡ ﾜﾝﾋﾟｰｽ"); got != "zara ワンピース" {
		t.Errorf("Fold() = %q", got)
	}
}

func TestCategoryTags(t *testing.T) {
	tags := CategoryTags()
	if len(tags) != 8 || tags[0] != "ワンピース" {
		t.Errorf("CategoryTags() = %v", tags)
	}
}
