// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/models"
)

// demoResources is a small, stable data set for local development and
// UI screenshots. Enabled with SEED_DEMO_DATA=true.
var demoResources = []models.ResourceSummary{
	{ID: "1", Type: models.ResourceMap, Title: "City overview"},
	{ID: "2", Type: models.ResourceMap, Title: "Utilities"},
	{ID: "wms-base", Type: models.ResourceService, Title: "Base map WMS"},
	{ID: "wfs-addr", Type: models.ResourceService, Title: "Address WFS"},
	{ID: "7", Type: models.ResourceLayer, Title: "Roads"},
	{ID: "8", Type: models.ResourceLayer, Title: "Buildings"},
	{ID: "9", Type: models.ResourceLayer, Title: "Addresses"},
	{ID: "g-infra", Type: models.ResourceGroup, Title: "Infrastructure"},
	{ID: "buffer", Type: models.ResourceTool, Title: "Buffer"},
	{ID: "search", Type: models.ResourceTool, Title: "Search"},
	{ID: "sketch", Type: models.ResourceTool, Title: "Sketch"},
}

// SeedDemoData upserts the demo data set. It is idempotent.
func (db *DB) SeedDemoData(ctx context.Context) error {
	for _, r := range demoResources {
		if err := db.UpsertResource(ctx, r); err != nil {
			return fmt.Errorf("seed %s %s: %w", r.Type, r.ID, err)
		}
	}
	if err := db.UpsertUser(ctx, "admin", "Administrator", "admin@example.com"); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	logging.Info().Int("resources", len(demoResources)).Msg("seeded demo config data")
	return nil
}
