// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mapadmin/internal/models"
	"github.com/tomtom215/mapadmin/internal/search"
)

const maxSearchBodyBytes = 64 << 10

// SearchAutocomplete answers POST /api/v1/search/autocomplete with the
// ranked similarity hits across every requested source.
func (h *Handler) SearchAutocomplete(w http.ResponseWriter, r *http.Request) {
	if h.search == nil || !h.search.Available() {
		respondError(w, r, http.StatusServiceUnavailable, models.HajkCodeServiceUnavailable,
			"search is not available", search.ErrGISUnavailable)
		return
	}

	var req models.SearchRequest
	body := http.MaxBytesReader(w, r.Body, maxSearchBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.HajkCodeInvalidBody, "invalid request body", err)
		return
	}

	hits, err := h.search.Autocomplete(r.Context(), req)
	if err != nil {
		h.respondSearchError(w, r, err)
		return
	}
	if hits == nil {
		hits = []models.SearchHit{}
	}

	respondJSON(w, http.StatusOK, models.AutocompleteResponse{Autocomplete: hits})
}

func (h *Handler) respondSearchError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *search.RequestError
	switch {
	case errors.Is(err, search.ErrGISUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, models.HajkCodeServiceUnavailable, "search is not available", err)
	case errors.As(err, &reqErr):
		respondError(w, r, http.StatusBadRequest, reqErr.HajkCode, reqErr.Message, nil)
	default:
		respondError(w, r, http.StatusInternalServerError, models.HajkCodeInternal, "search failed", err)
	}
}
