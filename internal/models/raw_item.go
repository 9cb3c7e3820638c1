// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package models

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// RawItem is one record of the upstream item-search API (formatVersion=2).
// It is decoded at the HTTP boundary so the normalizer never touches untyped JSON.
type RawItem struct {
	ItemName        string    `json:"itemName"`
	ItemCode        string    `json:"itemCode"`
	ItemPrice       int       `json:"itemPrice"`
	ItemCaption     string    `json:"itemCaption"`
	ItemURL         string    `json:"itemUrl"`
	AffiliateURL    string    `json:"affiliateUrl"`
	ShopName        string    `json:"shopName"`
	ShopCode        string    `json:"shopCode"`
	SmallImageURLs  ImageURLs `json:"smallImageUrls"`
	MediumImageURLs ImageURLs `json:"mediumImageUrls"`
	LargeImageURLs  ImageURLs `json:"largeImageUrls,omitempty"`
	ReviewCount     int       `json:"reviewCount"`
	ReviewAverage   Rating    `json:"reviewAverage"`
	GenreID         Code      `json:"genreId"`
	Availability    int       `json:"availability"`
}

// ImageURLs decodes both image list shapes: ["https://..."] (formatVersion=2)
// and [{"imageUrl": "https://..."}] (formatVersion=1).
type ImageURLs []string

// UnmarshalJSON implements json.Unmarshaler.
func (u *ImageURLs) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*u = plain
		return nil
	}
	var wrapped []struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	out := make([]string, 0, len(wrapped))
	for _, w := range wrapped {
		out = append(out, w.ImageURL)
	}
	*u = out
	return nil
}

// First returns the first non-empty URL.
func (u ImageURLs) First() string {
	for _, s := range u {
		if s != "" {
			return s
		}
	}
	return ""
}

// Rating is a review average that arrives as a number or a quoted number.
type Rating float64

// UnmarshalJSON implements json.Unmarshaler. Empty strings and null decode to 0.
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*r = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*r = Rating(f)
	return nil
}

// Code is an identifier that arrives as a string or a bare number.
type Code string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Code) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	*c = Code(bytes.Trim(data, `"`))
	return nil
}

// SearchResponse is the page envelope of the item-search API.
type SearchResponse struct {
	Count     int       `json:"count"`
	Page      int       `json:"page"`
	First     int       `json:"first"`
	Last      int       `json:"last"`
	Hits      int       `json:"hits"`
	PageCount int       `json:"pageCount"`
	Items     []RawItem `json:"Items"`

	// Error fields are populated instead of Items on API-level failures.
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}
