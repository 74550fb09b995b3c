// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package main is the entry point for the Gatekeeper server.

Gatekeeper authenticates every request with a signed JWT carried in the
access_token cookie or the Authorization header, authorizes it against a
route table of protected path prefixes, and serves the login and logout
endpoints that issue and drop those tokens.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("gatekeeper")
	├── DataSupervisor ("data-layer")
	│   └── User store GC (badger store only)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file and environment variables
 2. Logging: zerolog with JSON or console output
 3. User store: BadgerDB or in-memory, seeded from configuration
 4. Gate: route table, JWT codec, bcrypt verifier, login service
 5. Authorization: optional Casbin ownership policy
 6. Router: Chi with the gate mounted per route group
 7. Supervisor tree and signal handling

# Configuration

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	HTTP_PORT=8080
	JWT_SECRET=<32+ chars>
	STORAGE_MODE=cookie          # cookie or header
	PROTECTED_ROUTES=/admin=admin,/reports=analyst|admin
	USER_STORE=badger
	USER_STORE_PATH=/data/users
	LOG_LEVEL=info
	LOG_FORMAT=json

Users are seeded from the users.seed list of the YAML config. Password hashes
are produced with the hashpw command.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections and drains in-flight requests within server.shutdown_timeout,
then the user store is closed.
*/
package main
