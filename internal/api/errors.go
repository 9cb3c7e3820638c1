// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package api

// Error codes returned in APIError.Code.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidBody      = "INVALID_BODY"
	CodeUnknownSource    = "UNKNOWN_SOURCE"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeQueryFailed      = "QUERY_FAILED"
	CodeSyncInProgress   = "SYNC_IN_PROGRESS"
	CodeNoRun            = "NO_RUN"
	CodeRateLimited      = "RATE_LIMITED"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)
