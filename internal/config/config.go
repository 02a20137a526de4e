// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

// Package config loads MapAdmin configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	GIS       GISConfig       `koanf:"gis"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Search    SearchConfig    `koanf:"search"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig configures the DuckDB primary config store holding maps,
// layers, groups, services, tools and users.
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"` // 0 = DuckDB default
	SeedDemoData bool   `koanf:"seed_demo_data"`
}

// GISConfig configures the secondary PostgreSQL store used for similarity
// search. An empty DSN disables search (requests answer 503).
type GISConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`

	// Circuit breaker around search execution
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// Configured reports whether a GIS DSN was supplied.
func (g GISConfig) Configured() bool {
	return g.DSN != ""
}

// WebSocketConfig configures the admin presence socket.
type WebSocketConfig struct {
	SendBuffer        int           `koanf:"send_buffer"`
	MaxMessageSize    int64         `koanf:"max_message_size"`
	MessagesPerSecond float64       `koanf:"messages_per_second"`
	Burst             int           `koanf:"burst"`
	Greeting          string        `koanf:"greeting"`
	StatsInterval     time.Duration `koanf:"stats_interval"`
	VerifyResources   bool          `koanf:"verify_resources"` // reject presence claims on records missing from the config store

	// ResourceCacheTTL caches list-resources and existence lookups; 0 disables.
	ResourceCacheTTL  time.Duration `koanf:"resource_cache_ttl"`
	ResourceCacheSize int           `koanf:"resource_cache_size"`
}

// SearchConfig bounds similarity search requests.
type SearchConfig struct {
	MaxSources       int           `koanf:"max_sources"`
	StatementTimeout time.Duration `koanf:"statement_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
