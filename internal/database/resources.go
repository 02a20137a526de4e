// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/mapadmin/internal/database/query"
	"github.com/tomtom215/mapadmin/internal/metrics"
	"github.com/tomtom215/mapadmin/internal/models"
)

// DefaultListLimit caps ListResources when the filter has no limit.
const DefaultListLimit = 500

// ResourceFilter narrows ListResources.
type ResourceFilter struct {
	Type   models.ResourceType
	IDs    []string
	Search string // case-insensitive substring of title
	Since  *time.Time
	Limit  int
}

// ListResources returns resource summaries of one type ordered by title.
func (db *DB) ListResources(ctx context.Context, filter ResourceFilter) (items []models.ResourceSummary, err error) {
	table, err := tableFor(filter.Type)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", table, time.Since(start), err) }()

	limit := filter.Limit
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	where, args := query.NewWhereBuilder().
		AddIn("id", filter.IDs).
		AddContains("title", filter.Search).
		AddSince("updated_at", filter.Since).
		BuildWithPrefix()
	args = append(args, limit)

	//nolint:gosec // table comes from resourceTables, the WHERE clause is parameterized
	q := fmt.Sprintf("SELECT id, title, updated_at FROM %s %s ORDER BY title, id LIMIT ?", table, where)

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer closeWithLog(rows, "rows")

	items = make([]models.ResourceSummary, 0)
	for rows.Next() {
		item := models.ResourceSummary{Type: filter.Type}
		if err := rows.Scan(&item.ID, &item.Title, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return items, nil
}

// ResourceExists reports whether a record with id exists for resourceType.
func (db *DB) ResourceExists(ctx context.Context, resourceType models.ResourceType, id string) (bool, error) {
	table, err := tableFor(resourceType)
	if err != nil {
		return false, err
	}

	var one int
	//nolint:gosec // table comes from resourceTables
	err = db.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", table), id).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up %s %s: %w", table, id, err)
	}
	return true, nil
}

// UpsertResource inserts or updates the common fields of one record.
// A zero UpdatedAt is stamped with the current time.
func (db *DB) UpsertResource(ctx context.Context, r models.ResourceSummary) (err error) {
	if r.ID == "" {
		return ErrInvalidResource
	}
	table, err := tableFor(r.Type)
	if err != nil {
		return err
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("UPSERT", table, time.Since(start), err) }()

	//nolint:gosec // table comes from resourceTables
	q := fmt.Sprintf(`INSERT INTO %s (id, title, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`, table)
	if _, err = db.conn.ExecContext(ctx, q, r.ID, r.Title, r.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert %s %s: %w", table, r.ID, err)
	}
	return nil
}

// UpsertUser inserts or updates an admin user record.
func (db *DB) UpsertUser(ctx context.Context, id, userName, email string) error {
	if id == "" {
		return ErrInvalidResource
	}
	_, err := db.conn.ExecContext(ctx, `INSERT INTO users (id, user_name, email, updated_at) VALUES (?, ?, ?, current_timestamp)
		ON CONFLICT (id) DO UPDATE SET user_name = excluded.user_name, email = excluded.email, updated_at = excluded.updated_at`,
		id, userName, email)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", id, err)
	}
	return nil
}

// Counts returns the row count of every table, keyed by table name.
func (db *DB) Counts(ctx context.Context) (map[string]int64, error) {
	tables := make([]string, 0, len(resourceTables)+1)
	for _, rt := range models.ResourceTypes {
		tables = append(tables, resourceTables[rt])
	}
	tables = append(tables, "users")

	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var n int64
		//nolint:gosec // table names are constants
		if err := db.conn.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
