// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package authz provides the optional Casbin-backed extra check that runs
after the gate's role check has passed.

The role check only knows which roles may enter a route prefix. The extra
check refines that per request: the default policy lets admins reach any
/api/v1/users/<name> resource while other users may only reach their own.

# Model

The request tuple is (user name, role, path, method). Policy rows name a
role ("*" for any), a keyMatch2 path pattern, a method ("*" for any) and
the path variable that must equal the user name ("*" for none):

	p, admin, /api/v1/users/*, *, *
	p, *, /api/v1/users/:owner/*, GET, owner

The model and policy are embedded; authz.model_path and authz.policy_path
override them from disk. File policies are reloaded periodically.

# Usage

	enforcer, err := authz.NewEnforcer(ctx, authz.ConfigFrom(cfg.Authz))
	if err != nil {
	    return err
	}
	defer enforcer.Close()

	users := gate.WithOptions(auth.Options{ExtraCheck: enforcer.ExtraCheck()})

# Metrics

	gatekeeper_authz_decisions_total{role, decision}
	gatekeeper_authz_decision_duration_seconds{cache_hit}
	gatekeeper_authz_cache_hits_total
	gatekeeper_authz_cache_misses_total
*/
package authz
