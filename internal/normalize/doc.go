// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

// Package normalize turns raw upstream items into catalog Products and derives
// their tags.
//
// Tagging evaluates ordered keyword taxonomies (category, style, material,
// season, feature, brand) over the NFKC-folded, lowercased concatenation of
// title, caption and shop name. Taxonomy tags come first, then the gender tag
// from the genre, then the source's static tags; the list is truncated to
// MaxTags so taxonomy matches survive.
//
// Items without an image, price or item code fail with ErrInvalidItem. Used-goods
// listings and thinly reviewed low-rated items fail with ErrFilteredItem.
package normalize
