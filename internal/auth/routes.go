// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidRoute is returned by NewRouteTable for a malformed entry.
var ErrInvalidRoute = errors.New("invalid protected route")

// RouteTable maps protected path prefixes to the roles allowed to access them.
// It is immutable after construction and safe for concurrent use.
type RouteTable struct {
	// prefixes sorted longest first so the first hit is the most specific
	prefixes []string
	roles    map[string]map[string]struct{}
}

// NewRouteTable builds a table from prefix -> roles.
// Every prefix must begin with "/" and list at least one role.
// A nil or empty map yields a table that protects nothing.
func NewRouteTable(routes map[string][]string) (*RouteTable, error) {
	t := &RouteTable{
		prefixes: make([]string, 0, len(routes)),
		roles:    make(map[string]map[string]struct{}, len(routes)),
	}

	for prefix, roles := range routes {
		if !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("%w: prefix %q must begin with /", ErrInvalidRoute, prefix)
		}
		if len(roles) == 0 {
			return nil, fmt.Errorf("%w: prefix %q has no allowed roles", ErrInvalidRoute, prefix)
		}

		set := make(map[string]struct{}, len(roles))
		for _, role := range roles {
			set[role] = struct{}{}
		}
		t.roles[prefix] = set
		t.prefixes = append(t.prefixes, prefix)
	}

	sort.Slice(t.prefixes, func(i, j int) bool {
		if len(t.prefixes[i]) != len(t.prefixes[j]) {
			return len(t.prefixes[i]) > len(t.prefixes[j])
		}
		return t.prefixes[i] < t.prefixes[j]
	})

	return t, nil
}

// Match returns the longest configured prefix that path starts with, and the
// span of path it covers. ok is false when the path is not protected.
//
// Matching is anchored at the start of the path: "/api/admin" does not match
// the prefix "/admin".
func (t *RouteTable) Match(path string) (prefix, span string, ok bool) {
	for _, p := range t.prefixes {
		if strings.HasPrefix(path, p) {
			return p, path[:len(p)], true
		}
	}
	return "", "", false
}

// Allows reports whether role is in the allowed set for prefix.
// Unknown prefixes allow nobody.
func (t *RouteTable) Allows(prefix, role string) bool {
	_, ok := t.roles[prefix][role]
	return ok
}

// Roles returns the allowed roles for prefix in sorted order.
func (t *RouteTable) Roles(prefix string) []string {
	set := t.roles[prefix]
	out := make([]string, 0, len(set))
	for role := range set {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// Prefixes returns the configured prefixes, longest first.
func (t *RouteTable) Prefixes() []string {
	return append([]string(nil), t.prefixes...)
}

// Len returns the number of protected prefixes.
func (t *RouteTable) Len() int {
	return len(t.prefixes)
}
