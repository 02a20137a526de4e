// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/mapadmin/internal/config"
	"github.com/tomtom215/mapadmin/internal/gis"
	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/models"
	"github.com/tomtom215/mapadmin/internal/presence"
	ws "github.com/tomtom215/mapadmin/internal/websocket"
)

// ConfigStore is the part of the primary store the health endpoints use.
type ConfigStore interface {
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (map[string]int64, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs autocomplete queries. *search.Service satisfies it.
type Searcher interface {
	Available() bool
	Autocomplete(ctx context.Context, req models.SearchRequest) ([]models.SearchHit, error)
}

// Dependencies collects everything a Handler serves from. Store, GIS,
// Search and Hub may be nil; the matching endpoints then report the
// feature as unavailable.
type Dependencies struct {
	Store    ConfigStore
	GIS      Pinger
	Search   Searcher
	Registry *presence.Registry
	Hub      *ws.Hub
	Config   *config.Config
	Version  string
}

// Handler holds the HTTP handlers.
type Handler struct {
	store     ConfigStore
	gis       Pinger
	search    Searcher
	registry  *presence.Registry
	hub       *ws.Hub
	config    *config.Config
	version   string
	startTime time.Time
}

// NewHandler creates a handler set. A nil Registry falls back to the hub's.
func NewHandler(deps Dependencies) *Handler {
	registry := deps.Registry
	if registry == nil && deps.Hub != nil {
		registry = deps.Hub.Registry()
	}
	return &Handler{
		store:     deps.Store,
		gis:       deps.GIS,
		search:    deps.Search,
		registry:  registry,
		hub:       deps.Hub,
		config:    deps.Config,
		version:   deps.Version,
		startTime: time.Now(),
	}
}

type gisPinger struct {
	db      *sql.DB
	timeout time.Duration
}

func (p gisPinger) Ping(ctx context.Context) error {
	return gis.Ping(ctx, p.db, p.timeout)
}

// NewGISPinger adapts the GIS pool to Pinger. It returns nil for a nil db
// so the readiness check reports the store as not configured.
func NewGISPinger(db *sql.DB, timeout time.Duration) Pinger {
	if db == nil {
		return nil
	}
	return gisPinger{db: db, timeout: timeout}
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return upgrader
}

// checkWebSocketOrigin validates WebSocket connection origins
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browsers always send Origin on a WebSocket handshake.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", logging.SanitizeValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
