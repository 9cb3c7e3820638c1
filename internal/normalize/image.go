// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package normalize

import (
	"net/url"
	"strings"

	"github.com/tomtom215/atelier/internal/models"
)

// thumbnailHost serves resizable images controlled by the _ex query parameter.
const thumbnailHost = "thumbnail.image.rakuten.co.jp"

// BestImage picks the first image by size preference: large, medium, small.
func BestImage(item *models.RawItem) string {
	for _, urls := range []models.ImageURLs{item.LargeImageURLs, item.MediumImageURLs, item.SmallImageURLs} {
		if u := urls.First(); u != "" {
			return u
		}
	}
	return ""
}

// OptimizeImageURL forces https and, for the thumbnail host, requests size
// (e.g. "800x800"). Unparseable URLs are returned unchanged.
func OptimizeImageURL(raw, size string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	if size != "" && u.Host == thumbnailHost {
		q := u.Query()
		q.Set("_ex", size)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
