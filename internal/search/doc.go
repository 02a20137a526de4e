// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

/*
Package search implements trigram similarity autocomplete over arbitrary
(table, column) sources in the GIS store.

Every caller-supplied value passes through SanitizeForSQL before it is
used. Identifiers are additionally quoted with pq.QuoteIdentifier, the
column tag with pq.QuoteLiteral, and the query text and both limits are
bound parameters:

	WITH source_0 AS (
	    SELECT DISTINCT "street"::text AS hit,
	           similarity("street"::text, $1) AS similarity_score,
	           'street'::text AS match_column
	    FROM "addresses" WHERE "street"::text % $1
	    ORDER BY similarity_score DESC LIMIT $2
	)
	SELECT hit, similarity_score, match_column FROM (
	    SELECT * FROM source_0
	) AS hits ORDER BY similarity_score DESC LIMIT $3

The pg_trgm.similarity_threshold setting is session scoped, so a search
pins one pooled connection, sets the threshold, runs the query and always
resets the threshold before the connection returns to the pool.
*/
package search
