// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package supervisor provides process supervision for Gatekeeper using suture v4.

The tree restarts crashed services with backoff and shuts everything down in
order when the root context is canceled:

	RootSupervisor ("gatekeeper")
	├── DataSupervisor ("data-layer")
	│   └── StoreGCService (badger user store only)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (service failures, backoff, restarts) are logged through
sutureslog on an slog.Logger backed by zerolog, see logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Services live in the services subpackage.
*/
package supervisor
