// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"net/http"
)

// Authorizer combines the route table and the token codec into an Outcome.
// It holds no mutable state and is safe for concurrent use.
type Authorizer struct {
	routes *RouteTable
	codec  TokenCodec
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(routes *RouteTable, codec TokenCodec) *Authorizer {
	return &Authorizer{routes: routes, codec: codec}
}

// Routes returns the route table the authorizer matches against.
func (a *Authorizer) Routes() *RouteTable {
	return a.routes
}

// Authorize decides the outcome for r given the token extracted from it.
// present is false when no token was found.
//
// A token that fails to decode yields Unauthenticated even on an unprotected
// path, so a client holding a stale token learns it must log in again.
func (a *Authorizer) Authorize(r *http.Request, token string, present bool) Outcome {
	path := r.URL.Path

	if !present {
		if _, _, ok := a.routes.Match(path); ok {
			return Unauthenticated{Reason: "you have to be logged in to view " + path}
		}
		return Anonymous{}
	}

	claims, err := a.codec.Decode(token)
	if err != nil {
		return Unauthenticated{Reason: err.Error()}
	}

	prefix, _, ok := a.routes.Match(path)
	if !ok {
		return Authenticated{Claims: claims}
	}

	role := claims.Role()
	if !a.routes.Allows(prefix, role) {
		return Forbidden{Name: claims.Name(), Role: role, Reason: "you do not have permission to view " + path}
	}
	return AuthenticatedWithMatch{Claims: claims, Path: path, Prefix: prefix}
}
