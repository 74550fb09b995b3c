// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package config provides centralized configuration management for Gatekeeper.

Configuration is loaded once at startup by LoadWithKoanf and injected into the
components that need it; nothing reads the environment after that.

# Configuration Sources

Three layers, later layers win:
  - Built-in defaults (defaultConfig)
  - Optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/gatekeeper/config.yaml, /etc/gatekeeper/config.yml
  - Environment variables (explicit allow-list, see envTransformFunc)

# Environment Variables

Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development or production

Security:
  - STORAGE_MODE: cookie or header (default: cookie)
  - JWT_SECRET: HS256 signing secret, at least 32 characters (required)
  - TOKEN_VALIDITY_SECONDS: Token lifetime (default: 3600)
  - EXTRA_CLAIM_FIELDS: Comma-separated user fields copied into tokens
  - REDIRECTS: Redirect browsers instead of returning JSON errors (default: true)
  - LOGIN_URL: Login page path (default: /login)
  - LOGOUT_REDIRECT: Where logout sends browsers (default: /)
  - COOKIE_SECURE: Set the Secure attribute on the access_token cookie
  - PROTECTED_ROUTES: Route table, e.g. "/admin=admin,/reports=analyst|admin"
  - LOGIN_RATE_LIMIT_REQUESTS, LOGIN_RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: Comma-separated allowed origins
  - BCRYPT_COST: Cost used for new hashes and the dummy hash (default: 10)

Users:
  - USER_STORE: badger or memory (default: memory)
  - USER_STORE_PATH: BadgerDB directory (required for badger)
  - USER_STORE_GC_INTERVAL: BadgerDB value log GC interval (default: 10m, 0 disables)

Authorization:
  - AUTHZ_ENABLED: Enable the Casbin ownership check on protected routes
  - CASBIN_MODEL_PATH, CASBIN_POLICY_PATH: Override the embedded model and policy

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include file:line in log entries

# Example YAML

	security:
	  storage_mode: cookie
	  jwt_secret: "change-me-to-a-long-random-string-of-32+-chars"
	  routes:
	    - prefix: /admin
	      roles: [admin]
	    - prefix: /reports
	      roles: [analyst, admin]
	  landing:
	    admin:
	      redirect: /admin
	      message: "welcome back"
	users:
	  store: badger
	  path: /data/users
	  seed:
	    - name: alice
	      role: admin
	      password_hash: "$2a$10$..."

Route prefixes are configured as a list rather than a map because koanf splits
map keys on ".", which would corrupt prefixes such as "/v1.2".
*/
package config
