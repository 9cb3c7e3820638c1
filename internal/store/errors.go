// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package store

import (
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/atelier/internal/logging"
)

var (
	// ErrNotFound is returned by lookups that match nothing.
	ErrNotFound = errors.New("product not found")

	// ErrStoreWrite marks a failed mutation. Callers skip the batch and continue.
	ErrStoreWrite = errors.New("store write failed")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store is closed")
)

// WriteError describes a failed write of a batch.
type WriteError struct {
	Op   string
	Size int
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %s of %d products: %v", ErrStoreWrite, e.Op, e.Size, e.Err)
}

// Unwrap exposes both ErrStoreWrite and the driver error.
func (e *WriteError) Unwrap() []error {
	return []error{ErrStoreWrite, e.Err}
}

func writeErr(op string, size int, err error) error {
	if err == nil {
		return nil
	}
	return &WriteError{Op: op, Size: size, Err: err}
}

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource, ignoring errors. Cleanup paths only.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
