// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/mapadmin/internal/models"
)

// resourceTables maps each resource type to its table. Table names reach
// SQL text only through this map.
var resourceTables = map[models.ResourceType]string{
	models.ResourceMap:     "maps",
	models.ResourceLayer:   "layers",
	models.ResourceTool:    "tools",
	models.ResourceGroup:   "layer_groups",
	models.ResourceService: "services",
}

func tableFor(resourceType models.ResourceType) (string, error) {
	table, ok := resourceTables[resourceType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownResourceType, resourceType)
	}
	return table, nil
}

// schemaStatements creates every table. Each resource table shares
// id/title/updated_at so ListResources can read them uniformly.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS maps (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL DEFAULT '',
		description VARCHAR,
		projection VARCHAR DEFAULT 'EPSG:3006',
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS services (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL DEFAULT '',
		url VARCHAR,
		service_type VARCHAR,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS layers (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL DEFAULT '',
		service_id VARCHAR,
		layer_name VARCHAR,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS layer_groups (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL DEFAULT '',
		map_id VARCHAR,
		parent_id VARCHAR,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS tools (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL DEFAULT '',
		map_id VARCHAR,
		options VARCHAR,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		user_name VARCHAR NOT NULL,
		email VARCHAR,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE INDEX IF NOT EXISTS idx_layers_service ON layers(service_id)`,
	`CREATE INDEX IF NOT EXISTS idx_layer_groups_map ON layer_groups(map_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tools_map ON tools(map_id)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
