// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package models

import "time"

// APIResponse is the envelope used by every HTTP endpoint.
//
//	{"status":"success","data":{...},"metadata":{"timestamp":"...","query_time_ms":3}}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Preferences carries personalization weights for read-time scoring.
// Weights are in [0,1]; missing keys count as zero.
type Preferences struct {
	TagWeights   map[string]float64 `json:"tag_weights,omitempty" validate:"omitempty,dive,keys,required,endkeys,gte=0,lte=1"`
	BrandWeights map[string]float64 `json:"brand_weights,omitempty" validate:"omitempty,dive,keys,required,endkeys,gte=0,lte=1"`
}

// Empty reports whether no personalization weights are present.
func (p *Preferences) Empty() bool {
	return p == nil || (len(p.TagWeights) == 0 && len(p.BrandWeights) == 0)
}

// FeedResponse is the payload of the feed endpoint.
type FeedResponse struct {
	Products       []*Product `json:"products"`
	Count          int        `json:"count"`
	DiversityScore float64    `json:"diversity_score"`
	Personalized   bool       `json:"personalized"`
}
