// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package auth is the request-time authentication and authorization gate.

For every inbound request the gate decides whether the caller may proceed and,
if so, which identity to attach to the request context.

# Components

  - RouteTable: path prefix -> allowed roles, longest-prefix match
  - ExtractToken: raw token from the access_token cookie or the
    Authorization / Access-Token header, depending on StorageMode
  - TokenCodec: encode/decode of signed claims (JWTManager, HS256)
  - CredentialVerifier: bcrypt password check plus a dummy check for unknown users
  - Authorizer: combines the three above into an Outcome
  - LoginService: verifies credentials and mints a token
  - Gate: HTTP middleware that routes login, logout and everything else, then
    turns outcomes into redirects, JSON errors or an attached Identity

# Outcomes

Authorize returns exactly one of:

	Anonymous                  no token, path not protected
	Authenticated              valid token, path not protected
	AuthenticatedWithMatch     valid token, protected path, role allowed
	Unauthenticated            protected path without token, or a bad token
	Forbidden                  valid token, role not allowed for the prefix

Gate.translate is the only place outcomes become HTTP responses.

# Usage

	table, _ := auth.NewRouteTable(cfg.Security.RouteTable())
	codec, _ := auth.NewJWTManager(&cfg.Security)
	verifier, _ := auth.NewBcryptVerifier(cfg.Security.BcryptCost)
	authorizer := auth.NewAuthorizer(table, codec)
	login := auth.NewLoginService(store, verifier, codec, auth.LoginConfig{...})
	gate := auth.NewGate(authorizer, login, auth.GateConfig{...}, auth.Options{Redirects: true})

	r.Use(gate.Middleware)

	func handler(w http.ResponseWriter, r *http.Request) {
	    id := auth.IdentityFromContext(r.Context())
	    if id.Anonymous() { ... }
	}

# Security

  - Tokens are signed, not encrypted. Never put secrets in claims.
  - Unknown users and wrong passwords cost one bcrypt comparison each.
  - Role comparison is exact string membership; there is no hierarchy.
*/
package auth
