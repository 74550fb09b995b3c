// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"time"
)

// Standard claim keys. Extra fields configured in
// security.extra_claim_fields are stored under their own names.
const (
	ClaimID      = "id"
	ClaimName    = "name"
	ClaimRole    = "role"
	ClaimExpires = "exp"
)

// Claims is a decoded token payload.
// It always carries id, name, role and exp once issued by LoginService.
type Claims map[string]any

// ID returns the user ID.
func (c Claims) ID() string {
	return c.str(ClaimID)
}

// Name returns the user name.
func (c Claims) Name() string {
	return c.str(ClaimName)
}

// Role returns the user role, or "" if absent.
func (c Claims) Role() string {
	return c.str(ClaimRole)
}

// ExpiresAt returns the exp claim as a time, or the zero time if absent.
func (c Claims) ExpiresAt() time.Time {
	switch v := c[ClaimExpires].(type) {
	case int64:
		return time.Unix(v, 0)
	case float64:
		return time.Unix(int64(v), 0)
	case int:
		return time.Unix(int64(v), 0)
	default:
		return time.Time{}
	}
}

// Extra returns every claim that is not one of the standard keys.
func (c Claims) Extra() map[string]any {
	var out map[string]any
	for k, v := range c {
		switch k {
		case ClaimID, ClaimName, ClaimRole, ClaimExpires:
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func (c Claims) str(key string) string {
	s, _ := c[key].(string)
	return s
}
