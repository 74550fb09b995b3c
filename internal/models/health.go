// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package models

// HealthStatus represents the health check response
type HealthStatus struct {
	Status         string  `json:"status"` // "healthy" or "degraded"
	StorageMode    string  `json:"storage_mode"`
	UserStore      string  `json:"user_store"`
	UserStoreReady bool    `json:"user_store_ready"`
	AuthzEnabled   bool    `json:"authz_enabled"`
	ProtectedPaths int     `json:"protected_paths"`
	Uptime         float64 `json:"uptime_seconds"`
}
