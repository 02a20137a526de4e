// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package search

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mapadmin/internal/config"
	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/metrics"
	"github.com/tomtom215/mapadmin/internal/models"
	"github.com/tomtom215/mapadmin/internal/validation"
)

const (
	breakerName         = "gis_search"
	resetThresholdLimit = 5 * time.Second
)

// Service runs autocomplete searches against the GIS store.
type Service struct {
	db               *sql.DB
	maxSources       int
	statementTimeout time.Duration
	breaker          *gobreaker.CircuitBreaker[[]models.SearchHit]
}

// NewService creates a search service. db may be nil when the GIS store is
// not configured; every search then fails with ErrGISUnavailable.
func NewService(db *sql.DB, gisCfg config.GISConfig, searchCfg config.SearchConfig) *Service {
	maxFailures := gisCfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    gisCfg.BreakerInterval,
		Timeout:     gisCfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// Client cancellations say nothing about the store's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("gis circuit breaker state changed")
		},
	}

	return &Service{
		db:               db,
		maxSources:       searchCfg.MaxSources,
		statementTimeout: searchCfg.StatementTimeout,
		breaker:          gobreaker.NewCircuitBreaker[[]models.SearchHit](settings),
	}
}

// Available reports whether a GIS store is configured.
func (s *Service) Available() bool {
	return s != nil && s.db != nil
}

// Autocomplete validates req and returns the ranked hits.
//
// Errors: ErrGISUnavailable (503), *RequestError (400) or a wrapped
// execution error (500). Validation always completes before the first
// database round-trip.
func (s *Service) Autocomplete(ctx context.Context, req models.SearchRequest) ([]models.SearchHit, error) {
	if !s.Available() {
		metrics.RecordSearch("unavailable", 0)
		return nil, ErrGISUnavailable
	}

	req, err := s.prepare(req)
	if err != nil {
		metrics.RecordSearch("rejected", 0)
		return nil, err
	}

	q, err := BuildAutocompleteQuery(req.Sources, req.QueryString, req.LimitPerSource, req.TotalLimit)
	if err != nil {
		metrics.RecordSearch("rejected", 0)
		return nil, err
	}
	metrics.SearchSources.Observe(float64(len(req.Sources)))

	start := time.Now()
	hits, err := s.breaker.Execute(func() ([]models.SearchHit, error) {
		return s.execute(ctx, q, req.PgTrgmSimilarityThreshold)
	})
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordSearch("unavailable", 0)
		return nil, ErrGISUnavailable
	case err != nil:
		metrics.RecordSearch("error", elapsed)
		return nil, err
	}
	metrics.RecordSearch("ok", elapsed)
	return hits, nil
}

// prepare sanitizes every field and rejects incomplete or out-of-range
// requests.
func (s *Service) prepare(req models.SearchRequest) (models.SearchRequest, error) {
	queryString := SanitizeForSQL(req.QueryString)
	threshold := SanitizeForSQL(req.PgTrgmSimilarityThreshold)
	totalLimit := SanitizeForSQL(req.TotalLimit)
	limitPerSource := SanitizeForSQL(req.LimitPerSource)

	if isZero(queryString) || isZero(threshold) || isZero(totalLimit) || isZero(limitPerSource) || len(req.Sources) == 0 {
		return req, missingParameters()
	}

	clean := models.SearchRequest{
		QueryString:               queryString.(string),
		Sources:                   make([]models.SearchSource, len(req.Sources)),
		PgTrgmSimilarityThreshold: req.PgTrgmSimilarityThreshold,
		LimitPerSource:            req.LimitPerSource,
		TotalLimit:                req.TotalLimit,
	}
	for i, src := range req.Sources {
		clean.Sources[i] = models.SearchSource{
			Table:  SanitizeString(src.Table),
			Column: SanitizeString(src.Column),
		}
		if clean.Sources[i].Table == "" || clean.Sources[i].Column == "" {
			return req, missingParameters()
		}
	}

	if s.maxSources > 0 && len(clean.Sources) > s.maxSources {
		return req, invalidParameters(fmt.Sprintf("too many sources: %d (max %d)", len(clean.Sources), s.maxSources))
	}
	if verr := validation.ValidateStruct(clean); verr != nil {
		return req, invalidParameters(verr.Error())
	}
	return clean, nil
}

// execute runs the three-statement sequence on one pinned connection.
func (s *Service) execute(ctx context.Context, q Query, threshold float64) (hits []models.SearchHit, err error) {
	if s.statementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.statementTimeout)
		defer cancel()
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire gis connection: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, sql.ErrConnDone) {
			logging.Warn().Err(cerr).Msg("failed to release gis connection")
		}
	}()

	if _, err := conn.ExecContext(ctx, setThresholdSQL, strconv.FormatFloat(threshold, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("set similarity threshold: %w", err)
	}
	defer resetThreshold(conn)

	rows, err := conn.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("run autocomplete query: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("failed to close autocomplete rows")
		}
	}()

	hits = make([]models.SearchHit, 0)
	for rows.Next() {
		var h models.SearchHit
		if err := rows.Scan(&h.Hit, &h.SimilarityScore, &h.MatchColumn); err != nil {
			return nil, fmt.Errorf("scan autocomplete row: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read autocomplete rows: %w", err)
	}
	return hits, nil
}

// resetThreshold restores the session default. It uses its own context so
// it still runs after the request context is cancelled. A connection that
// cannot be reset is discarded instead of returned to the pool.
func resetThreshold(conn *sql.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), resetThresholdLimit)
	defer cancel()

	if _, err := conn.ExecContext(ctx, resetThresholdSQL); err != nil {
		logging.Error().Err(err).Msg("failed to reset similarity threshold, discarding connection")
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
}
