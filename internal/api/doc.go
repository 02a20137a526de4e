// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

/*
Package api exposes MapAdmin over HTTP.

Routes (all JSON unless noted):

	POST /api/v1/search/autocomplete                     similarity search over the GIS store
	GET  /api/v1/ws                                      admin presence WebSocket (upgrade)
	GET  /api/v1/presence                                every active presence claim
	GET  /api/v1/presence/{resourceType}/{resourceId}    claims on one resource
	GET  /api/v1/health/live                             liveness probe
	GET  /api/v1/health/ready                            readiness probe
	GET  /metrics                                        Prometheus exposition (text)

Every error body is a models.ErrorResponse. Its errorId is the request's
correlation ID, so a client report can be matched to the server log line
that recorded the cause. Internal causes are never echoed to the client.

Autocomplete status mapping:

	GIS store unset or breaker open   503 SERVICE_UNAVAILABLE
	body not JSON / wrong types       400 INVALID_BODY
	required field missing            400 MISSING_PARAMETERS
	bad identifier / limits           400 INVALID_PARAMETERS
	query failure                     500 INTERNAL_ERROR
*/
package api
