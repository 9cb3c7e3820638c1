// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Fold maps s to the form used for matching: NFKC (full-width ASCII becomes
// ASCII), width-folded (half-width katakana becomes full-width) and lowercased.
func Fold(s string) string {
	return strings.ToLower(width.Fold.String(norm.NFKC.String(s)))
}
