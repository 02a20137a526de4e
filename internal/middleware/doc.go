// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

/*
Package middleware provides the HTTP middleware shared by every MapAdmin
route: request ID propagation, Prometheus instrumentation and API
security headers.

All middleware uses the standard func(http.Handler) http.Handler shape so
it composes directly with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)

Request IDs:

RequestID honours an upstream X-Request-ID header when it is a sane
token, otherwise it generates a UUID. The ID is echoed in the response
and stored in the request context together with a fresh correlation ID,
so every log line written through logging.Ctx carries both.

Metrics:

PrometheusMetrics labels requests by chi route pattern
("/api/v1/presence/{resourceType}/{resourceId}") rather than raw path so
that resource IDs do not explode label cardinality. Requests that match no
route are recorded as "unmatched".
*/
package middleware
