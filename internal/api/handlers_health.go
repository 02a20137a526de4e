// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/metrics"
	"github.com/tomtom215/mapadmin/internal/models"
)

// Check values reported in HealthResponse.Checks.
const (
	checkOK            = "ok"
	checkUnreachable   = "unreachable"
	checkNotConfigured = "not_configured"
)

// HealthLive handles liveness probe requests. It never touches a store.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime).Seconds()
	metrics.AppUptime.Set(uptime)

	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:       "alive",
		Version:      h.version,
		Uptime:       uptime,
		Connections:  h.connectionCount(),
		PresenceSize: h.presenceCount(),
	})
}

// HealthReady handles readiness probe requests.
//
// The config store must answer a ping for the service to be ready. The GIS
// store only powers search, so an unreachable GIS store degrades readiness
// without failing it.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := make(map[string]string, 8)

	storeOK := false
	switch {
	case h.store == nil:
		checks["config_store"] = checkNotConfigured
	case h.store.Ping(ctx) != nil:
		checks["config_store"] = checkUnreachable
	default:
		storeOK = true
		checks["config_store"] = checkOK
		if counts, err := h.store.Counts(ctx); err == nil {
			for table, n := range counts {
				checks["rows_"+table] = strconv.FormatInt(n, 10)
			}
		} else {
			logging.Ctx(ctx).Warn().Err(err).Msg("readiness: row counts unavailable")
		}
	}

	gisOK := true
	switch {
	case h.gis == nil:
		checks["gis_store"] = checkNotConfigured
	case h.gis.Ping(ctx) != nil:
		gisOK = false
		checks["gis_store"] = checkUnreachable
	default:
		checks["gis_store"] = checkOK
	}

	status, code := "ready", http.StatusOK
	switch {
	case !storeOK:
		status, code = "not_ready", http.StatusServiceUnavailable
	case !gisOK:
		status = "degraded"
	}

	respondJSON(w, code, models.HealthResponse{
		Status:       status,
		Version:      h.version,
		Uptime:       time.Since(h.startTime).Seconds(),
		Checks:       checks,
		Connections:  h.connectionCount(),
		PresenceSize: h.presenceCount(),
	})
}

func (h *Handler) connectionCount() int {
	if h.registry == nil {
		return 0
	}
	return h.registry.ConnectionCount()
}

func (h *Handler) presenceCount() int {
	if h.registry == nil {
		return 0
	}
	return h.registry.PresenceCount()
}
