// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/mapadmin/internal/logging"
)

var (
	// ErrUnknownResourceType is returned for a type with no backing table.
	ErrUnknownResourceType = errors.New("database: unknown resource type")

	// ErrInvalidResource is returned by UpsertResource for a record missing its ID.
	ErrInvalidResource = errors.New("database: resource id is required")
)

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("failed to close resource")
	}
}

// closeQuietly closes a resource on an error path where Close errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // best-effort cleanup
	}
}
