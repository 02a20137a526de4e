// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package models

// ErrorResponse is the body of every non-2xx HTTP response.
//
// ErrorID correlates the response with the server-side log entry. HajkCode
// is a stable machine-readable code for client-side handling and is omitted
// when not applicable.
//
//	{"errorId": "3f2a9c1e", "error": "missing required search parameters", "hajkCode": "MISSING_PARAMETERS"}
type ErrorResponse struct {
	ErrorID  string `json:"errorId"`
	Error    string `json:"error"`
	HajkCode string `json:"hajkCode,omitempty"`
}

// Domain error codes carried in ErrorResponse.HajkCode.
const (
	HajkCodeMissingParameters  = "MISSING_PARAMETERS"
	HajkCodeInvalidParameters  = "INVALID_PARAMETERS"
	HajkCodeInvalidBody        = "INVALID_BODY"
	HajkCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	HajkCodeRateLimited        = "RATE_LIMITED"
	HajkCodeNotFound           = "NOT_FOUND"
	HajkCodeInternal           = "INTERNAL_ERROR"
)

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Uptime       float64           `json:"uptime_seconds"`
	Checks       map[string]string `json:"checks,omitempty"`
	Connections  int               `json:"connections"`
	PresenceSize int               `json:"presences"`
}

// PresenceSnapshot is the body of GET /api/v1/presence.
type PresenceSnapshot struct {
	Count  int             `json:"count"`
	Admins []PresenceClaim `json:"admins"`
}
