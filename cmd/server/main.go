// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/mapadmin/internal/api"
	"github.com/tomtom215/mapadmin/internal/config"
	"github.com/tomtom215/mapadmin/internal/database"
	"github.com/tomtom215/mapadmin/internal/gis"
	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/presence"
	"github.com/tomtom215/mapadmin/internal/search"
	"github.com/tomtom215/mapadmin/internal/supervisor"
	"github.com/tomtom215/mapadmin/internal/supervisor/services"
	ws "github.com/tomtom215/mapadmin/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const storeMonitorInterval = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Bool("gis_configured", cfg.GIS.Configured()).
		Str("environment", cfg.Server.Environment).
		Msg("Starting MapAdmin")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("MapAdmin stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing config store")
		}
	}()

	gisDB := openGIS(ctx, cfg.GIS)
	if gisDB != nil {
		defer func() {
			if err := gisDB.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing GIS store")
			}
		}()
	}

	registry := presence.NewRegistry()
	resources := ws.NewCachedResourceStore(db, cfg.WebSocket.ResourceCacheTTL, cfg.WebSocket.ResourceCacheSize)
	hub := ws.NewHub(registry, ws.NewRouter(registry, resources, cfg.WebSocket.VerifyResources), cfg.WebSocket)
	searchService := search.NewService(gisDB, cfg.GIS, cfg.Search)
	gisPinger := api.NewGISPinger(gisDB, cfg.GIS.ConnectTimeout)

	handler := api.NewHandler(api.Dependencies{
		Store:    db,
		GIS:      gisPinger,
		Search:   searchService,
		Registry: registry,
		Hub:      hub,
		Config:   cfg,
		Version:  version,
	})
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromSecurity(cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddStoreService(services.NewStoreMonitorService("config", db, storeMonitorInterval, 5*time.Second))
	if gisPinger != nil {
		tree.AddStoreService(services.NewStoreMonitorService("gis", gisPinger, storeMonitorInterval, cfg.GIS.ConnectTimeout))
	}
	tree.AddRealtimeService(services.NewPresenceHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree")
	err = <-tree.ServeBackground(ctx)

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openGIS connects to the GIS store. Search is optional, so a failed
// connection is logged and search stays disabled.
func openGIS(ctx context.Context, cfg config.GISConfig) *sql.DB {
	if !cfg.Configured() {
		logging.Info().Msg("GIS store not configured; autocomplete disabled")
		return nil
	}

	db, err := gis.Open(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("GIS store unreachable; autocomplete disabled")
		return nil
	}
	return db
}
