// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/models"
)

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError logs cause under a fresh error ID and sends message, never
// cause, to the client. 5xx responses log at error level, 4xx at warn.
func respondError(w http.ResponseWriter, r *http.Request, status int, hajkCode, message string, cause error) {
	errorID := logging.CorrelationIDFromContext(r.Context())
	if errorID == "" {
		errorID = logging.GenerateCorrelationID()
	}

	logger := logging.Ctx(r.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event = event.
		Str("error_id", errorID).
		Int("status", status).
		Str("path", logging.SanitizeValue(r.URL.Path))
	if hajkCode != "" {
		event = event.Str("hajk_code", hajkCode)
	}
	if cause != nil {
		event = event.Str("cause", logging.SanitizeValue(cause.Error()))
	}
	event.Msg(message)

	respondJSON(w, status, models.ErrorResponse{
		ErrorID:  errorID,
		Error:    message,
		HajkCode: hajkCode,
	})
}
