// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/gatekeeper/internal/logging"
	"github.com/tomtom215/gatekeeper/internal/validation"
)

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks that required configuration is present and consistent.
// Field-level rules live in struct tags; cross-field rules are checked here.
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrInvalidConfig)
	}

	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, verr.Error())
	}

	if err := c.validateRoutes(); err != nil {
		return err
	}
	if err := c.validateAuthz(); err != nil {
		return err
	}
	if err := c.validateUsers(); err != nil {
		return err
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validateRoutes rejects duplicate prefixes.
func (c *Config) validateRoutes() error {
	seen := make(map[string]struct{}, len(c.Security.Routes))
	for _, r := range c.Security.Routes {
		if _, dup := seen[r.Prefix]; dup {
			return fmt.Errorf("%w: route prefix %q is configured more than once", ErrInvalidConfig, r.Prefix)
		}
		seen[r.Prefix] = struct{}{}
	}
	return nil
}

// AuthzUsersPrefix is the tree the Casbin policy is written for. The extra
// check only runs on requests that matched a protected route, so authz needs
// a route that covers it.
const AuthzUsersPrefix = "/api/v1/users"

func (c *Config) validateAuthz() error {
	if !c.Authz.Enabled {
		return nil
	}
	for _, r := range c.Security.Routes {
		if strings.HasPrefix(AuthzUsersPrefix, r.Prefix) {
			return nil
		}
	}
	return fmt.Errorf("%w: AUTHZ_ENABLED requires a protected route covering %s", ErrInvalidConfig, AuthzUsersPrefix)
}

func (c *Config) validateUsers() error {
	if c.Users.Store == "badger" && c.Users.Path == "" {
		return fmt.Errorf("%w: USER_STORE_PATH is required when USER_STORE=badger", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(c.Users.Seed))
	for _, u := range c.Users.Seed {
		if _, dup := seen[u.Name]; dup {
			return fmt.Errorf("%w: user %q is seeded more than once", ErrInvalidConfig, u.Name)
		}
		seen[u.Name] = struct{}{}
	}
	return nil
}

// validateCORS rejects a wildcard origin in production: combined with cookie
// credentials it lets any site act as the logged-in user.
func (c *Config) validateCORS() error {
	if !c.IsProduction() {
		return nil
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("%w: CORS_ORIGINS=* is not allowed in production", ErrInvalidConfig)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: LOG_LEVEL %q is not a valid level", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}
