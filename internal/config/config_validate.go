// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that the configuration is complete and within bounds.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateGIS(); err != nil {
		return err
	}
	if err := c.validateWebSocket(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

// validateGIS only checks the GIS section when a DSN is set.
func (c *Config) validateGIS() error {
	if !c.GIS.Configured() {
		return nil
	}
	if err := validatePostgresDSN(c.GIS.DSN); err != nil {
		return fmt.Errorf("GIS_DATABASE_URL is invalid: %w", err)
	}
	if c.GIS.MaxOpenConns < 1 {
		return fmt.Errorf("GIS_MAX_OPEN_CONNS must be at least 1")
	}
	if c.GIS.MaxIdleConns < 0 || c.GIS.MaxIdleConns > c.GIS.MaxOpenConns {
		return fmt.Errorf("GIS_MAX_IDLE_CONNS must be between 0 and GIS_MAX_OPEN_CONNS")
	}
	if c.GIS.ConnectTimeout <= 0 {
		return fmt.Errorf("GIS_CONNECT_TIMEOUT must be positive")
	}
	if c.GIS.BreakerMaxFailures == 0 {
		return fmt.Errorf("GIS_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

// validatePostgresDSN accepts postgres:// URLs and key=value connection strings.
func validatePostgresDSN(dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		// lib/pq also accepts "host=... dbname=..." strings.
		if strings.Contains(dsn, "=") {
			return nil
		}
		return fmt.Errorf("expected postgres:// URL or key=value connection string")
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("scheme must be postgres or postgresql, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

const (
	minSendBuffer     = 16
	maxSendBuffer     = 4096
	minMaxMessageSize = 1024
	maxMaxMessageSize = 8 * 1024 * 1024
)

func (c *Config) validateWebSocket() error {
	ws := c.WebSocket
	if ws.SendBuffer < minSendBuffer || ws.SendBuffer > maxSendBuffer {
		return fmt.Errorf("WS_SEND_BUFFER must be between %d and %d", minSendBuffer, maxSendBuffer)
	}
	if ws.MaxMessageSize < minMaxMessageSize || ws.MaxMessageSize > maxMaxMessageSize {
		return fmt.Errorf("WS_MAX_MESSAGE_SIZE must be between %d and %d", minMaxMessageSize, maxMaxMessageSize)
	}
	if ws.MessagesPerSecond <= 0 {
		return fmt.Errorf("WS_MESSAGES_PER_SECOND must be positive")
	}
	if ws.Burst < 1 {
		return fmt.Errorf("WS_BURST must be at least 1")
	}
	if ws.StatsInterval < time.Second {
		return fmt.Errorf("WS_STATS_INTERVAL must be at least 1s")
	}
	if ws.ResourceCacheTTL < 0 {
		return fmt.Errorf("WS_RESOURCE_CACHE_TTL must not be negative")
	}
	if ws.ResourceCacheTTL > 0 && ws.ResourceCacheSize < 1 {
		return fmt.Errorf("WS_RESOURCE_CACHE_SIZE must be at least 1 when caching is enabled")
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.MaxSources < 1 || c.Search.MaxSources > 50 {
		return fmt.Errorf("SEARCH_MAX_SOURCES must be between 1 and 50")
	}
	if c.Search.StatementTimeout <= 0 {
		return fmt.Errorf("SEARCH_STATEMENT_TIMEOUT must be positive")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	if c.IsProduction() && c.HasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed with ENVIRONMENT=production; " +
			"list the admin UI origins explicitly, e.g. CORS_ORIGINS=https://admin.example.com")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any CORS origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
