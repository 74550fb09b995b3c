// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"github.com/tomtom215/gatekeeper/internal/config"
)

// GateConfigFrom maps the security config section onto GateConfig.
func GateConfigFrom(sec *config.SecurityConfig) (GateConfig, error) {
	mode, err := ParseStorageMode(sec.StorageMode)
	if err != nil {
		return GateConfig{}, err
	}

	landing := make(map[string]Landing, len(sec.Landing))
	for role, l := range sec.Landing {
		landing[role] = Landing{Redirect: l.Redirect, Message: l.Message}
	}

	return GateConfig{
		Mode:           mode,
		LoginURL:       sec.LoginURL,
		LogoutRedirect: sec.LogoutRedirect,
		CookieSecure:   sec.CookieSecure,
		Landing:        landing,
		DefaultLanding: Landing{Redirect: sec.DefaultLanding.Redirect, Message: sec.DefaultLanding.Message},
	}, nil
}

// LoginConfigFrom maps the security config section onto LoginConfig.
func LoginConfigFrom(sec *config.SecurityConfig) LoginConfig {
	return LoginConfig{
		Validity:    sec.TokenValidity(),
		ExtraFields: sec.ExtraClaimFields,
	}
}

// NewGateFromConfig builds the route table, token codec, authorizer and
// gate described by sec. Options come from sec.Redirects.
func NewGateFromConfig(sec *config.SecurityConfig, store UserStore, verifier CredentialVerifier) (*Gate, *RouteTable, error) {
	routes, err := NewRouteTable(sec.RouteTable())
	if err != nil {
		return nil, nil, err
	}
	codec, err := NewJWTManager(sec)
	if err != nil {
		return nil, nil, err
	}
	gateCfg, err := GateConfigFrom(sec)
	if err != nil {
		return nil, nil, err
	}

	gate := NewGate(
		NewAuthorizer(routes, codec),
		NewLoginService(store, verifier, codec, LoginConfigFrom(sec)),
		gateCfg,
		Options{Redirects: sec.Redirects},
	)
	return gate, routes, nil
}
