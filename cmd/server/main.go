// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/awardsync/internal/api"
	"github.com/tomtom215/awardsync/internal/auth"
	"github.com/tomtom215/awardsync/internal/config"
	"github.com/tomtom215/awardsync/internal/database"
	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/outbox"
	"github.com/tomtom215/awardsync/internal/supervisor"
	"github.com/tomtom215/awardsync/internal/supervisor/services"
	syncpkg "github.com/tomtom215/awardsync/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Bool("crm_enabled", cfg.CRM.Enabled).
		Bool("lists_enabled", cfg.Lists.Enabled).
		Int("program_year", cfg.Sync.ProgramYear).
		Str("db_path", cfg.Database.Path).
		Str("outbox_path", cfg.Outbox.Path).
		Str("storage_bucket", cfg.Storage.Bucket).
		Msg("Configuration loaded")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	store, err := outbox.Open(outbox.OptionsFromConfig(cfg.Outbox))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing outbox")
		}
	}()

	platforms := syncpkg.PlatformsFromConfig(cfg)
	dispatcher := syncpkg.NewDispatcher(store, platforms.Syncers()...).WithStore(db)
	if len(dispatcher.Platforms()) == 0 {
		logging.Warn().Msg("No sync platform enabled; nominations and votes are stored locally only")
	}

	worker := outbox.NewWorker(store, dispatcher.Handle, outbox.WorkerConfigFromConfig(cfg.Outbox))
	dispatcher.SetNotifier(worker.Notify)

	adminAuth, err := auth.NewAdminAuth(cfg.Security.AdminUsername, cfg.Security.AdminPasswordHash)
	if err != nil {
		return err
	}

	handler := api.NewHandler(api.HandlerOptions{
		Store:         db,
		Dispatcher:    dispatcher,
		Outbox:        store,
		Notify:        worker.Notify,
		PublicBaseURL: cfg.Server.PublicBaseURL,

		DirectoryCacheTTL: cfg.Server.DirectoryCacheTTL,
	})
	chiMW := api.NewChiMiddleware(chiConfig(cfg))
	router := api.NewRouter(handler, chiMW, adminAuth.Middleware)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		return err
	}

	tree.AddDataService(worker)
	tree.AddDataService(services.NewOutboxMonitorService(store, time.Minute))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Strs("platforms", dispatcher.Platforms()).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	return nil
}

func chiConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	chiCfg := api.DefaultChiMiddlewareConfig()
	chiCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	if cfg.Security.RateLimitReqs > 0 {
		chiCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	}
	if cfg.Security.RateLimitWindow > 0 {
		chiCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	}
	chiCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return chiCfg
}
