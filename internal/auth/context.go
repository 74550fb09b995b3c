// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"context"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is what the gate attaches to a request it lets through.
// Claims is nil for anonymous callers.
type Identity struct {
	Claims Claims
	// Prefix is the protected prefix the request matched, if any.
	Prefix string
}

// Anonymous reports whether no token backs the identity.
func (id Identity) Anonymous() bool {
	return id.Claims == nil
}

// ContextWithIdentity attaches id to ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity attached by the gate.
// Requests that never passed the gate get an anonymous identity.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityContextKey).(Identity)
	return id
}
