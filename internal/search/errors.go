// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package search

import (
	"errors"

	"github.com/tomtom215/mapadmin/internal/models"
)

// ErrGISUnavailable is returned when the GIS store is not configured or the
// circuit breaker is open.
var ErrGISUnavailable = errors.New("search: gis store unavailable")

// RequestError rejects a request before any database call.
type RequestError struct {
	HajkCode string
	Message  string
}

func (e *RequestError) Error() string {
	return e.Message
}

func missingParameters() *RequestError {
	return &RequestError{
		HajkCode: models.HajkCodeMissingParameters,
		Message:  "missing required search parameters: queryString, sources, pgTrgmSimilarityThreshold, limitPerSource and totalLimit must all be set",
	}
}

func invalidParameters(msg string) *RequestError {
	return &RequestError{HajkCode: models.HajkCodeInvalidParameters, Message: msg}
}
