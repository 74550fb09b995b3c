// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package models

import "time"

// LoginRequest is the name/password pair submitted to a login endpoint.
// It is accepted as JSON or as an HTML form and never stored.
//
// Example:
//
//	{"name": "alice", "password": "correct horse battery staple"}
type LoginRequest struct {
	Name     string `json:"name" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=72"`
}

// TokenBody is the body returned by a successful login in header storage mode.
// It is the whole response; no envelope is added.
type TokenBody struct {
	AccessToken string `json:"access_token"`
}

// LandingResponse is returned by a successful cookie-mode login to clients
// that do not follow redirects.
type LandingResponse struct {
	Message   string    `json:"message"`
	Redirect  string    `json:"redirect"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogoutResponse is returned by logout to clients that do not follow redirects.
// DropToken tells header-mode clients to discard their stored token.
type LogoutResponse struct {
	Message   string `json:"message"`
	DropToken bool   `json:"drop_token,omitempty"`
}

// IdentityResponse describes the identity the gate attached to a request.
type IdentityResponse struct {
	Anonymous bool                   `json:"anonymous"`
	ID        string                 `json:"id,omitempty"`
	Name      string                 `json:"name,omitempty"`
	Role      string                 `json:"role,omitempty"`
	ExpiresAt int64                  `json:"expires_at,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// StoredUser is a user record as held by the user store.
// PasswordHash is a bcrypt hash; Extra holds fields that may be copied into
// token claims when named in security.extra_claim_fields.
type StoredUser struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	PasswordHash string            `json:"password_hash"`
	Role         string            `json:"role"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// UserProfile is the public view of a StoredUser. The password hash is
// never part of it.
type UserProfile struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Role  string            `json:"role"`
	Extra map[string]string `json:"extra,omitempty"`
}

// Profile returns the public view of u.
func (u *StoredUser) Profile() UserProfile {
	return UserProfile{ID: u.ID, Name: u.Name, Role: u.Role, Extra: u.Extra}
}
