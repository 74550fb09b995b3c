// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

// Outcome is the result of authorizing one request.
// The set of implementations is closed: Anonymous, Authenticated,
// AuthenticatedWithMatch, Unauthenticated and Forbidden.
type Outcome interface {
	// Label is the metrics/log label for the outcome.
	Label() string
	outcome()
}

// Anonymous means no token was presented and the path is not protected.
type Anonymous struct{}

// Authenticated means a valid token was presented on an unprotected path.
type Authenticated struct {
	Claims Claims
}

// AuthenticatedWithMatch means a valid token was presented on a protected
// path and the role check passed. Path and Prefix feed the extra check.
type AuthenticatedWithMatch struct {
	Claims Claims
	Path   string
	Prefix string
}

// Unauthenticated means the path needs a login and the caller has none, or
// presented a token that could not be decoded.
type Unauthenticated struct {
	Reason string
}

// Forbidden means a valid token whose role is not allowed for the path.
// Name is recorded in the access_denied audit event.
type Forbidden struct {
	Name   string
	Role   string
	Reason string
}

func (Anonymous) Label() string              { return "anonymous" }
func (Authenticated) Label() string          { return "authenticated" }
func (AuthenticatedWithMatch) Label() string { return "authenticated_match" }
func (Unauthenticated) Label() string        { return "unauthenticated" }
func (Forbidden) Label() string              { return "forbidden" }

func (Anonymous) outcome()              {}
func (Authenticated) outcome()          {}
func (AuthenticatedWithMatch) outcome() {}
func (Unauthenticated) outcome()        {}
func (Forbidden) outcome()              {}
