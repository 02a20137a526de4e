// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mapadmin/internal/models"
)

// PresenceList returns every active presence claim.
func (h *Handler) PresenceList(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.HajkCodeServiceUnavailable, "presence is not available", nil)
		return
	}
	respondJSON(w, http.StatusOK, snapshot(h.registry.AllPresences()))
}

// PresenceOnResource returns the claims on one resource.
func (h *Handler) PresenceOnResource(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.HajkCodeServiceUnavailable, "presence is not available", nil)
		return
	}

	resourceType := models.ResourceType(chi.URLParam(r, "resourceType"))
	if !resourceType.Valid() {
		respondError(w, r, http.StatusNotFound, models.HajkCodeNotFound, "unknown resource type", nil)
		return
	}
	resourceID := chi.URLParam(r, "resourceId")

	respondJSON(w, http.StatusOK, snapshot(h.registry.AdminsOnResource(resourceType, resourceID)))
}

func snapshot(claims []models.PresenceClaim) models.PresenceSnapshot {
	return models.PresenceSnapshot{Count: len(claims), Admins: claims}
}
