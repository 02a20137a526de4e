// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package models

import "time"

// ResourceSummary is the list view of one record in the primary config store.
type ResourceSummary struct {
	ID        string       `json:"id"`
	Type      ResourceType `json:"type"`
	Title     string       `json:"title"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ResourceList is the reply payload for a list-resources query.
type ResourceList struct {
	ResourceType ResourceType      `json:"resourceType"`
	Items        []ResourceSummary `json:"items"`
}
