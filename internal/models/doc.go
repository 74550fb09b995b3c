// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package models defines the data structures shared between the gate, the user
store and the HTTP handlers.

Model Categories:

1. API envelopes:
  - APIResponse: Standard response wrapper ({"status", "data", "metadata", "error"})
  - APIError: Machine-readable code plus human-readable message
  - Metadata: Response metadata (timestamp)

2. Authentication models:
  - LoginRequest: Submitted name/password pair (validated with go-playground/validator)
  - TokenBody: Header-mode login body ({"access_token": "..."})
  - LandingResponse: Cookie-mode login body for non-redirecting clients
  - IdentityResponse: The identity attached to a request, as served by /api/v1/me
  - LogoutResponse: Logout body for non-redirecting clients

3. Stored entities:
  - StoredUser: A user record owned by the user store
  - UserProfile: The public view of a StoredUser

4. Operations:
  - HealthStatus: /healthz response

All JSON encoding in the repository goes through github.com/goccy/go-json; the
struct tags here are compatible with encoding/json.
*/
package models
