// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package search

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tomtom215/mapadmin/internal/config"
	"github.com/tomtom215/mapadmin/internal/models"
)

func setupMockService(t *testing.T, gisCfg config.GISConfig) (*sql.DB, sqlmock.Sqlmock, *Service) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	svc := NewService(db, gisCfg, config.SearchConfig{MaxSources: 3, StatementTimeout: 5 * time.Second})
	return db, mock, svc
}

func validRequest() models.SearchRequest {
	return models.SearchRequest{
		QueryString:               "Main St",
		Sources:                   []models.SearchSource{{Table: "addresses", Column: "street"}},
		PgTrgmSimilarityThreshold: 0.3,
		LimitPerSource:            10,
		TotalLimit:                20,
	}
}

func expectedQuery(t *testing.T, req models.SearchRequest) string {
	t.Helper()
	q, err := BuildAutocompleteQuery(req.Sources, req.QueryString, req.LimitPerSource, req.TotalLimit)
	if err != nil {
		t.Fatalf("BuildAutocompleteQuery: %v", err)
	}
	return regexp.QuoteMeta(q.SQL)
}

func TestAutocomplete_ExecutesThreeStatementsInOrder(t *testing.T) {
	db, mock, svc := setupMockService(t, config.GISConfig{})
	defer db.Close()

	req := validRequest()
	mock.ExpectExec(regexp.QuoteMeta(setThresholdSQL)).
		WithArgs("0.3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(expectedQuery(t, req)).
		WithArgs("Main St", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"hit", "similarity_score", "match_column"}).
			AddRow("Main Street", 0.61, "street").
			AddRow("Maine Street", 0.42, "street"))
	mock.ExpectExec(regexp.QuoteMeta(resetThresholdSQL)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	hits, err := svc.Autocomplete(context.Background(), req)
	if err != nil {
		t.Fatalf("Autocomplete: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Hit != "Main Street" || hits[0].MatchColumn != "street" {
		t.Errorf("hits[0] = %+v", hits[0])
	}
	if hits[0].SimilarityScore <= 0 || hits[0].SimilarityScore > 1 {
		t.Errorf("similarity score out of range: %v", hits[0].SimilarityScore)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAutocomplete_ResetRunsWhenQueryFails(t *testing.T) {
	db, mock, svc := setupMockService(t, config.GISConfig{})
	defer db.Close()

	req := validRequest()
	mock.ExpectExec(regexp.QuoteMeta(setThresholdSQL)).
		WithArgs("0.3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(expectedQuery(t, req)).
		WillReturnError(errors.New(`relation "addresses" does not exist`))
	mock.ExpectExec(regexp.QuoteMeta(resetThresholdSQL)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Autocomplete(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) || errors.Is(err, ErrGISUnavailable) {
		t.Errorf("execution failure must not look like a client or availability error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAutocomplete_ResetRunsWhenScanFails(t *testing.T) {
	db, mock, svc := setupMockService(t, config.GISConfig{})
	defer db.Close()

	req := validRequest()
	mock.ExpectExec(regexp.QuoteMeta(setThresholdSQL)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(expectedQuery(t, req)).
		WillReturnRows(sqlmock.NewRows([]string{"hit", "similarity_score", "match_column"}).
			AddRow("Main Street", "not-a-number", "street"))
	mock.ExpectExec(regexp.QuoteMeta(resetThresholdSQL)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := svc.Autocomplete(context.Background(), req); err == nil {
		t.Fatal("expected scan error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAutocomplete_FailedResetDiscardsConnection(t *testing.T) {
	db, mock, svc := setupMockService(t, config.GISConfig{})
	defer db.Close()

	req := validRequest()
	mock.ExpectExec(regexp.QuoteMeta(setThresholdSQL)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(expectedQuery(t, req)).
		WillReturnRows(sqlmock.NewRows([]string{"hit", "similarity_score", "match_column"}))
	mock.ExpectExec(regexp.QuoteMeta(resetThresholdSQL)).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectClose()

	hits, err := svc.Autocomplete(context.Background(), req)
	if err != nil {
		t.Fatalf("Autocomplete: %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("expected empty non-nil hits, got %#v", hits)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAutocomplete_NoResetWhenSetFails(t *testing.T) {
	db, mock, svc := setupMockService(t, config.GISConfig{})
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(setThresholdSQL)).
		WillReturnError(errors.New("unrecognized configuration parameter"))

	if _, err := svc.Autocomplete(context.Background(), validRequest()); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAutocomplete_RejectsBeforeAnyDatabaseCall(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.SearchRequest)
		hajkCode string
	}{
		{"empty query string", func(r *models.SearchRequest) { r.QueryString = "" }, models.HajkCodeMissingParameters},
		{"query sanitizes to empty", func(r *models.SearchRequest) { r.QueryString = "';--" }, models.HajkCodeMissingParameters},
		{"zero threshold", func(r *models.SearchRequest) { r.PgTrgmSimilarityThreshold = 0 }, models.HajkCodeMissingParameters},
		{"zero limit per source", func(r *models.SearchRequest) { r.LimitPerSource = 0 }, models.HajkCodeMissingParameters},
		{"zero total limit", func(r *models.SearchRequest) { r.TotalLimit = 0 }, models.HajkCodeMissingParameters},
		{"nil sources", func(r *models.SearchRequest) { r.Sources = nil }, models.HajkCodeMissingParameters},
		{"empty sources", func(r *models.SearchRequest) { r.Sources = []models.SearchSource{} }, models.HajkCodeMissingParameters},
		{"source column missing", func(r *models.SearchRequest) { r.Sources[0].Column = "" }, models.HajkCodeMissingParameters},
		{"threshold above one", func(r *models.SearchRequest) { r.PgTrgmSimilarityThreshold = 1.5 }, models.HajkCodeInvalidParameters},
		{"negative limit", func(r *models.SearchRequest) { r.TotalLimit = -1 }, models.HajkCodeInvalidParameters},
		{"identifier with spaces", func(r *models.SearchRequest) { r.Sources[0].Table = "my table" }, models.HajkCodeInvalidParameters},
		{"too many sources", func(r *models.SearchRequest) {
			r.Sources = []models.SearchSource{
				{Table: "a", Column: "x"}, {Table: "b", Column: "x"},
				{Table: "c", Column: "x"}, {Table: "d", Column: "x"},
			}
		}, models.HajkCodeInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, svc := setupMockService(t, config.GISConfig{})
			defer db.Close()

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Autocomplete(context.Background(), req)
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected *RequestError, got %v", err)
			}
			if reqErr.HajkCode != tt.hajkCode {
				t.Errorf("HajkCode = %q, want %q (%s)", reqErr.HajkCode, tt.hajkCode, reqErr.Message)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("database was touched: %v", err)
			}
		})
	}
}

func TestAutocomplete_NotConfigured(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, config.GISConfig{}, config.SearchConfig{})
	if svc.Available() {
		t.Error("expected service without a db to be unavailable")
	}

	// Availability is checked before validation.
	_, err := svc.Autocomplete(context.Background(), models.SearchRequest{})
	if !errors.Is(err, ErrGISUnavailable) {
		t.Errorf("expected ErrGISUnavailable, got %v", err)
	}
}

func TestAutocomplete_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	db, mock, svc := setupMockService(t, config.GISConfig{
		BreakerMaxFailures: 2,
		BreakerTimeout:     time.Minute,
	})
	defer db.Close()

	for i := 0; i < 2; i++ {
		mock.ExpectExec(regexp.QuoteMeta(setThresholdSQL)).
			WillReturnError(errors.New("connection refused"))
	}

	for i := 0; i < 2; i++ {
		_, err := svc.Autocomplete(context.Background(), validRequest())
		if err == nil || errors.Is(err, ErrGISUnavailable) {
			t.Fatalf("call %d: expected execution error, got %v", i, err)
		}
	}

	_, err := svc.Autocomplete(context.Background(), validRequest())
	if !errors.Is(err, ErrGISUnavailable) {
		t.Fatalf("expected ErrGISUnavailable once the breaker is open, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAutocomplete_SanitizesQueryString(t *testing.T) {
	db, mock, svc := setupMockService(t, config.GISConfig{})
	defer db.Close()

	req := validRequest()
	req.QueryString = "Main'; St--"

	mock.ExpectExec(regexp.QuoteMeta(setThresholdSQL)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("WITH source_0 AS (")).
		WithArgs("Main St", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"hit", "similarity_score", "match_column"}))
	mock.ExpectExec(regexp.QuoteMeta(resetThresholdSQL)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := svc.Autocomplete(context.Background(), req); err != nil {
		t.Fatalf("Autocomplete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRequestErrorMessage(t *testing.T) {
	t.Parallel()

	err := missingParameters()
	if !strings.Contains(err.Error(), "missing required search parameters") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
