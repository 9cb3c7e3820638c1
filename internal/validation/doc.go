// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

// Validation of configuration structs and API request bodies.
//
// # Custom Tags
//
//   - sourcename: lowercase slug used in product IDs and metric labels
//   - season: spring, summer, autumn (or fall), winter
//
// Everything else uses the validator's built-in tags (required, required_without,
// gte, lte, gtefield, dive, keys/endkeys, numeric, oneof).
//
// # Error Types
//
// ValidateStruct returns nil or a *RequestValidationError carrying one
// ValidationError per failed field. ToAPIError converts it to the API's
// VALIDATION_ERROR shape; the caller owns the HTTP status.
package validation
