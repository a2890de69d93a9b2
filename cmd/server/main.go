// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package main is the entry point for the catalog API server.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, environment (koanf v2)
//  2. Logging: zerolog, plus an slog bridge for the supervisor
//  3. Data: the JSON file store, the change source and the stats cache
//  4. HTTP: chi router with CORS, rate limiting, compression and metrics
//  5. Supervisor tree: the stats watcher and the HTTP server run as
//     supervised services and restart with backoff on failure
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains
// in-flight requests for up to HTTP_SHUTDOWN_TIMEOUT and the watcher stops.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/tomtom215/catalog/docs" // Import generated swagger docs
	"github.com/tomtom215/catalog/internal/api"
	"github.com/tomtom215/catalog/internal/config"
	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/query"
	"github.com/tomtom215/catalog/internal/stats"
	"github.com/tomtom215/catalog/internal/store"
	"github.com/tomtom215/catalog/internal/supervisor"
	"github.com/tomtom215/catalog/internal/supervisor/services"
	"github.com/tomtom215/catalog/internal/watch"
)

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
		Str("data_path", cfg.Data.Path).
		Str("watch_mode", cfg.Data.WatchMode).
		Int("port", cfg.Server.Port).
		Msg("Starting catalog server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileStore := store.NewFileStore(cfg.Data.Path)
	if _, err := fileStore.Stat(); err != nil {
		// Not fatal: the API reports DATA_UNAVAILABLE until the file appears.
		logging.Warn().Err(err).Msg("Item data not readable at startup")
	}

	changes := watch.New(cfg.Data.WatchMode, cfg.Data.Path, cfg.Data.PollInterval)
	statsCache := stats.New(ctx, fileStore, changes)

	handler := api.NewHandler(query.NewEngine(fileStore), statsCache, fileStore, int(cfg.API.CacheMaxAge.Seconds()))
	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled
	router := api.NewRouter(handler, mwCfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	tree.AddDataService(services.NewWatcherService(statsCache, "stats-watcher"))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Catalog server stopped")
}
