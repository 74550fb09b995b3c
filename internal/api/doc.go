// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package api provides the HTTP surface of the gatekeeper server, built on the
Chi router.

Route groups and the gate options each one mounts:

	GET  /healthz                  ungated
	GET  /metrics                  ungated, Prometheus exposition
	     /login, /logout, /, /admin/*
	                               browser gate (redirects per security.redirects)
	     /api/v1/login, /api/v1/logout, /api/v1/me, /api/v1/admin/users
	                               API gate (never redirects)
	GET  /api/v1/users/{name}      API gate plus the Casbin extra check when
	                               authz.enabled is set

Which paths require which roles is not decided here: it comes from the
security.routes table. The handlers below only read the identity the gate
attached with auth.IdentityFromContext.

Unknown paths are served through the browser gate too, so a protected prefix
answers 401/403 before it answers 404.

Global middleware, in order: request ID, real IP, panic recovery, access
log, Prometheus metrics, CORS, security headers. Login submissions are rate
limited per client IP with go-chi/httprate.
*/
package api
