// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

// Package gis opens the secondary PostgreSQL/PostGIS store that holds the
// searchable geodata (addresses, parcels, place names). The store must have
// the pg_trgm extension installed for similarity search.
package gis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/tomtom215/mapadmin/internal/config"
	"github.com/tomtom215/mapadmin/internal/logging"
)

const defaultConnectTimeout = 5 * time.Second

// ErrNotConfigured is returned by Open when no DSN is set.
var ErrNotConfigured = errors.New("gis: store not configured")

// Open connects to the GIS store and verifies the connection.
func Open(ctx context.Context, cfg config.GISConfig) (*sql.DB, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open gis store: %w", err)
	}
	configurePool(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(cfg.ConnectTimeout))
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping gis store: %w", err)
	}

	logging.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Int("max_idle_conns", cfg.MaxIdleConns).
		Msg("gis store connected")
	return db, nil
}

func configurePool(db *sql.DB, cfg config.GISConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// Ping reports whether db answers within timeout. A nil db reports
// ErrNotConfigured. A non-positive timeout uses 5s.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if db == nil {
		return ErrNotConfigured
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(timeout))
	defer cancel()
	return db.PingContext(pingCtx)
}

func connectTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultConnectTimeout
	}
	return d
}
