// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package authz

import (
	"net/http"

	"github.com/tomtom215/gatekeeper/internal/auth"
	"github.com/tomtom215/gatekeeper/internal/logging"
)

// ExtraCheck adapts the enforcer to the gate's extra check. It runs only
// for requests that already passed the role check, and either confirms the
// match or turns it into Forbidden. An enforcement error denies.
func (e *Enforcer) ExtraCheck() auth.ExtraCheck {
	return func(r *http.Request, claims auth.Claims, path, prefix string) auth.Outcome {
		role := claims.Role()

		allowed, err := e.Enforce(claims.Name(), role, path, r.Method)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("path", path).Msg("Policy evaluation failed")
		}
		if err != nil || !allowed {
			return auth.Forbidden{Name: claims.Name(), Role: role, Reason: "you do not have permission to view " + path}
		}
		return auth.AuthenticatedWithMatch{Claims: claims, Path: path, Prefix: prefix}
	}
}
