// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package models

// SearchSource names one column of one GIS table to search. Table may be
// schema-qualified ("public.addresses").
type SearchSource struct {
	Table  string `json:"table" validate:"required,max=128,sql_ident"`
	Column string `json:"column" validate:"required,max=128,sql_ident"`
}

// SearchRequest is the body of POST /api/v1/search/autocomplete.
//
// All five fields are required. Numeric fields that are zero are treated
// as missing, so a similarity threshold of 0 is rejected.
type SearchRequest struct {
	QueryString               string         `json:"queryString" validate:"max=256"`
	Sources                   []SearchSource `json:"sources" validate:"dive"`
	PgTrgmSimilarityThreshold float64        `json:"pgTrgmSimilarityThreshold" validate:"gte=0,lte=1"`
	LimitPerSource            int            `json:"limitPerSource" validate:"gte=0,lte=1000"`
	TotalLimit                int            `json:"totalLimit" validate:"gte=0,lte=5000"`
}

// SearchHit is one ranked row of an autocomplete result.
type SearchHit struct {
	Hit             string  `json:"hit"`
	SimilarityScore float64 `json:"similarity_score"`
	MatchColumn     string  `json:"match_column"`
}

// AutocompleteResponse is the success body of the autocomplete endpoint.
type AutocompleteResponse struct {
	Autocomplete []SearchHit `json:"autocomplete"`
}
