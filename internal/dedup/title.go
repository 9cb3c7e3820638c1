// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package dedup

import (
	"strings"
	"unicode"

	"github.com/tomtom215/atelier/internal/normalize"
)

// NormalizeTitle returns the duplicate-detection key of a title: folded
// (NFKC, width, lowercase), with punctuation, brackets and symbols removed and
// whitespace collapsed.
//
//	NormalizeTitle("【送料無料】Cool  Shirt!! ") == "送料無料cool shirt"
func NormalizeTitle(title string) string {
	folded := normalize.Fold(title)
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, folded)
	return strings.Join(strings.Fields(stripped), " ")
}

func titleKey(titleKey, brand string) string {
	return titleKey + "\x00" + brand
}
