// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package search

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/tomtom215/mapadmin/internal/models"
)

const (
	setThresholdSQL   = "SELECT set_config('pg_trgm.similarity_threshold', $1, false)"
	resetThresholdSQL = "RESET pg_trgm.similarity_threshold"
)

// Query is an assembled statement and its bound arguments.
type Query struct {
	SQL  string
	Args []any
}

// BuildAutocompleteQuery assembles the ranked UNION ALL query over sources.
// The query text is bound as $1, the per-source limit as $2 and the total
// limit as $3.
func BuildAutocompleteQuery(sources []models.SearchSource, queryString string, limitPerSource, totalLimit int) (Query, error) {
	if len(sources) == 0 {
		return Query{}, missingParameters()
	}

	ctes := make([]string, 0, len(sources))
	unions := make([]string, 0, len(sources))
	for i, src := range sources {
		table, err := quoteIdentifier(src.Table)
		if err != nil {
			return Query{}, err
		}
		column, err := quoteIdentifier(src.Column)
		if err != nil {
			return Query{}, err
		}
		tag := pq.QuoteLiteral(SanitizeString(src.Column))

		name := fmt.Sprintf("source_%d", i)
		ctes = append(ctes, fmt.Sprintf(
			"%s AS (SELECT DISTINCT %s::text AS hit, similarity(%s::text, $1) AS similarity_score, %s::text AS match_column FROM %s WHERE %s::text %% $1 ORDER BY similarity_score DESC LIMIT $2)",
			name, column, column, tag, table, column))
		unions = append(unions, "SELECT * FROM "+name)
	}

	var sb strings.Builder
	sb.WriteString("WITH ")
	sb.WriteString(strings.Join(ctes, ", "))
	sb.WriteString(" SELECT hit, similarity_score, match_column FROM (")
	sb.WriteString(strings.Join(unions, " UNION ALL "))
	sb.WriteString(") AS hits ORDER BY similarity_score DESC LIMIT $3")

	return Query{
		SQL:  sb.String(),
		Args: []any{queryString, limitPerSource, totalLimit},
	}, nil
}

// quoteIdentifier sanitizes a possibly schema-qualified name and quotes
// each dotted part.
func quoteIdentifier(name string) (string, error) {
	clean := SanitizeString(name)
	if clean == "" {
		return "", missingParameters()
	}
	parts := strings.Split(clean, ".")
	for i, part := range parts {
		if part == "" {
			return "", invalidParameters(fmt.Sprintf("invalid identifier %q", clean))
		}
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, "."), nil
}
