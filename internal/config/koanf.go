// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gatekeeper/config.yaml",
	"/etc/gatekeeper/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			StorageMode:          "cookie",
			JWTSecret:            "", // required, no default
			TokenValiditySeconds: 3600,
			Redirects:            true,
			LoginURL:             "/login",
			LogoutRedirect:       "/",
			CookieSecure:         false,
			Routes: []RouteConfig{
				{Prefix: "/admin", Roles: []string{"admin"}},
				{Prefix: "/api/v1/admin", Roles: []string{"admin"}},
				{Prefix: AuthzUsersPrefix, Roles: []string{"user", "admin"}},
			},
			DefaultLanding: LandingConfig{
				Redirect: "/",
				Message:  "you are now logged in",
			},
			LoginRateLimitReqs:   10,
			LoginRateLimitWindow: time.Minute,
			CORSOrigins:          []string{},
			BcryptCost:           10,
		},
		Users: UsersConfig{
			Store:      "memory",
			Path:       "",
			GCInterval: 10 * time.Minute,
		},
		Authz: AuthzConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// JWT_SECRET -> security.jwt_secret, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processRouteField(k); err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", routesConfigPath, err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none is found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.extra_claim_fields",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars always arrive as strings; YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		if err := k.Set(path, splitList(strVal, ",")); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

const routesConfigPath = "security.routes"

// processRouteField expands PROTECTED_ROUTES into the list form used in YAML.
//
// Format: "/admin=admin,/reports=analyst|admin". Entries are separated by
// commas, the prefix from its roles by "=", and roles by "|".
func processRouteField(k *koanf.Koanf) error {
	strVal, ok := k.Get(routesConfigPath).(string)
	if !ok {
		return nil
	}

	routes := make([]interface{}, 0)
	for _, entry := range splitList(strVal, ",") {
		prefix, roles, found := strings.Cut(entry, "=")
		if !found {
			return fmt.Errorf("entry %q has no roles (want prefix=role|role)", entry)
		}
		routes = append(routes, map[string]interface{}{
			"prefix": strings.TrimSpace(prefix),
			"roles":  splitList(roles, "|"),
		})
	}
	return k.Set(routesConfigPath, routes)
}

func splitList(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMappings is the allow-list of environment variables, keyed by lowercased name.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security
	"storage_mode":              "security.storage_mode",
	"jwt_secret":                "security.jwt_secret",
	"token_validity_seconds":    "security.token_validity_seconds",
	"extra_claim_fields":        "security.extra_claim_fields",
	"redirects":                 "security.redirects",
	"login_url":                 "security.login_url",
	"logout_redirect":           "security.logout_redirect",
	"cookie_secure":             "security.cookie_secure",
	"protected_routes":          routesConfigPath,
	"login_rate_limit_requests": "security.login_rate_limit_reqs",
	"login_rate_limit_window":   "security.login_rate_limit_window",
	"disable_rate_limit":        "security.rate_limit_disabled",
	"cors_origins":              "security.cors_origins",
	"bcrypt_cost":               "security.bcrypt_cost",

	// Users
	"user_store":             "users.store",
	"user_store_path":        "users.path",
	"user_store_gc_interval": "users.gc_interval",

	// Authorization
	"authz_enabled":      "authz.enabled",
	"casbin_model_path":  "authz.model_path",
	"casbin_policy_path": "authz.policy_path",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are skipped so the rest of the
// environment cannot leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
