// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/mapadmin/internal/middleware"
	"github.com/tomtom215/mapadmin/internal/models"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses defaults.
func NewRouter(handler *Handler, mwCfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwCfg),
	}
}

// SetupChi builds the complete route tree.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	m := router.chiMiddleware

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(m.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.HajkCodeNotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "", "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(m.RateLimitHealth())
			r.Use(middleware.SecurityHeaders)
			r.Get("/health/live", h.HealthLive)
			r.Get("/health/ready", h.HealthReady)
		})

		r.Group(func(r chi.Router) {
			r.Use(m.RateLimit("search"))
			r.Use(middleware.SecurityHeaders)
			r.Use(chimiddleware.Compress(5, "application/json"))
			r.Post("/search/autocomplete", h.SearchAutocomplete)
		})

		r.Group(func(r chi.Router) {
			r.Use(m.RateLimit("presence"))
			r.Use(middleware.SecurityHeaders)
			r.Use(chimiddleware.Compress(5, "application/json"))
			r.Get("/presence", h.PresenceList)
			r.Get("/presence/{resourceType}/{resourceId}", h.PresenceOnResource)
		})

		r.With(m.RateLimit("ws")).Get("/ws", h.WebSocket)
	})

	return r
}
