// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/tomtom215/gatekeeper/internal/api"
	"github.com/tomtom215/gatekeeper/internal/auth"
	"github.com/tomtom215/gatekeeper/internal/authz"
	"github.com/tomtom215/gatekeeper/internal/config"
	"github.com/tomtom215/gatekeeper/internal/logging"
	"github.com/tomtom215/gatekeeper/internal/supervisor"
	"github.com/tomtom215/gatekeeper/internal/supervisor/services"
	"github.com/tomtom215/gatekeeper/internal/userstore"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Config not loaded yet, so this goes to the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Gatekeeper stopped with an error")
	}
	logging.Info().Msg("Gatekeeper stopped gracefully")
}

// run wires the components and blocks until a shutdown signal arrives.
// Returning instead of exiting lets the deferred closes run.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("storage_mode", cfg.Security.StorageMode).
		Str("user_store", cfg.Users.Store).
		Int("protected_routes", len(cfg.Security.Routes)).
		Bool("redirects", cfg.Security.Redirects).
		Bool("authz", cfg.Authz.Enabled).
		Msg("Configuration loaded")

	store, err := userstore.New(cfg.Users)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing user store")
		}
	}()

	if err := userstore.Seed(ctx, store, cfg.Users.Seed, cfg.Security.BcryptCost); err != nil {
		return err
	}

	verifier, err := auth.NewBcryptVerifier(cfg.Security.BcryptCost)
	if err != nil {
		return err
	}
	gate, routes, err := auth.NewGateFromConfig(&cfg.Security, store, verifier)
	if err != nil {
		return err
	}

	var enforcer *authz.Enforcer
	if cfg.Authz.Enabled {
		enforcer, err = authz.NewEnforcer(ctx, authz.ConfigFrom(cfg.Authz))
		if err != nil {
			return err
		}
		defer enforcer.Close()
	}

	router, err := api.NewRouter(api.Dependencies{
		Config:   cfg,
		Gate:     gate,
		Routes:   routes,
		Store:    store,
		Enforcer: enforcer,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	if gc, ok := store.(services.GarbageCollector); ok && cfg.Users.GCInterval > 0 {
		tree.AddDataService(services.NewStoreGCService(gc, cfg.Users.GCInterval))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}
