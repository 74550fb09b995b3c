// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Users    UsersConfig    `koanf:"users"`
	Authz    AuthzConfig    `koanf:"authz"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development production"`
}

// SecurityConfig holds everything the gate needs at request time.
type SecurityConfig struct {
	StorageMode          string                   `koanf:"storage_mode" validate:"storagemode"`
	JWTSecret            string                   `koanf:"jwt_secret" validate:"min=32"`
	TokenValiditySeconds int                      `koanf:"token_validity_seconds" validate:"gt=0"`
	ExtraClaimFields     []string                 `koanf:"extra_claim_fields" validate:"dive,required"`
	Redirects            bool                     `koanf:"redirects"`
	LoginURL             string                   `koanf:"login_url" validate:"routeprefix"`
	LogoutRedirect       string                   `koanf:"logout_redirect" validate:"routeprefix"`
	CookieSecure         bool                     `koanf:"cookie_secure"`
	Routes               []RouteConfig            `koanf:"routes" validate:"dive"`
	Landing              map[string]LandingConfig `koanf:"landing" validate:"dive"`
	DefaultLanding       LandingConfig            `koanf:"default_landing"`
	LoginRateLimitReqs   int                      `koanf:"login_rate_limit_reqs" validate:"gte=0"`
	LoginRateLimitWindow time.Duration            `koanf:"login_rate_limit_window" validate:"gte=0"`
	RateLimitDisabled    bool                     `koanf:"rate_limit_disabled"`
	CORSOrigins          []string                 `koanf:"cors_origins"`
	BcryptCost           int                      `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

// RouteConfig protects every path starting with Prefix.
type RouteConfig struct {
	Prefix string   `koanf:"prefix" validate:"routeprefix"`
	Roles  []string `koanf:"roles" validate:"min=1,dive,required"`
}

// LandingConfig is where a role is sent after a successful cookie-mode login.
type LandingConfig struct {
	Redirect string `koanf:"redirect" validate:"omitempty,routeprefix"`
	Message  string `koanf:"message"`
}

// UsersConfig selects the user store backend.
type UsersConfig struct {
	Store string       `koanf:"store" validate:"oneof=badger memory"`
	Path  string       `koanf:"path"`
	Seed  []UserConfig `koanf:"seed" validate:"dive"`

	// GCInterval is how often BadgerDB value log GC runs. Zero disables it.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// UserConfig is a user upserted into the store at startup.
// Passwords are never configured in plain text; use cmd/hashpw.
type UserConfig struct {
	ID           string            `koanf:"id"`
	Name         string            `koanf:"name" validate:"required"`
	PasswordHash string            `koanf:"password_hash" validate:"required"`
	Role         string            `koanf:"role" validate:"required"`
	Extra        map[string]string `koanf:"extra"`
}

// AuthzConfig controls the optional Casbin check that runs after the role
// check succeeds on a protected route.
type AuthzConfig struct {
	Enabled    bool   `koanf:"enabled"`
	ModelPath  string `koanf:"model_path"`
	PolicyPath string `koanf:"policy_path"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}

// TokenValidity returns the token lifetime as a duration.
func (s *SecurityConfig) TokenValidity() time.Duration {
	return time.Duration(s.TokenValiditySeconds) * time.Second
}

// RouteTable flattens the configured routes into prefix -> roles.
func (s *SecurityConfig) RouteTable() map[string][]string {
	table := make(map[string][]string, len(s.Routes))
	for _, r := range s.Routes {
		table[r.Prefix] = append(table[r.Prefix], r.Roles...)
	}
	return table
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
