// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

// Package testinfra starts real backing services for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/search/...
//
// NewGISContainer runs PostGIS with pg_trgm so similarity search can be
// exercised against the real trigram operators instead of sqlmock.
// Tests skip when Docker is unavailable.
package testinfra
