// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package normalize

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidItem marks an item missing required data (image, price, code).
	ErrInvalidItem = errors.New("invalid item")

	// ErrFilteredItem marks a valid item excluded by catalog policy.
	ErrFilteredItem = errors.New("filtered item")
)

// Drop reasons, used as log fields and metric labels.
const (
	ReasonNoImage     = "no_image"
	ReasonNoPrice     = "no_price"
	ReasonNoCode      = "no_item_code"
	ReasonNoTitle     = "no_title"
	ReasonUsedGoods   = "used_goods"
	ReasonLowReviews  = "low_reviews"
	ReasonUnavailable = "unavailable"
)

// DropError carries the reason an item was rejected.
type DropError struct {
	Reason string
	kind   error
	detail string
}

func (e *DropError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.kind, e.Reason, e.detail)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.Reason)
}

func (e *DropError) Unwrap() error { return e.kind }

func invalid(reason string) error {
	return &DropError{Reason: reason, kind: ErrInvalidItem}
}

func filtered(reason, detail string) error {
	return &DropError{Reason: reason, kind: ErrFilteredItem, detail: detail}
}

// DropReason extracts the reason from a normalizer error, or "".
func DropReason(err error) string {
	var de *DropError
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

// excludedKeyword returns the first keyword contained in title.
func excludedKeyword(foldedTitle string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(foldedTitle, Fold(kw)) {
			return kw, true
		}
	}
	return "", false
}

// lowRated rejects thinly reviewed items with a poor average. Unreviewed items
// pass and get the baseline quality score instead.
func lowRated(count int, average float64, minCount int, minAverage float64) bool {
	return count > 0 && count < minCount && average < minAverage
}
