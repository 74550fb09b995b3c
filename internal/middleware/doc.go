// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package middleware provides the HTTP middleware that runs around the gate:
request IDs, Prometheus request metrics and access logging.

All middleware has the chi signature func(http.Handler) http.Handler.

Order matters. RequestID runs first so the metrics and log lines of a
request carry its ID:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)

Metrics:

	gatekeeper_http_requests_total{method, status}
	gatekeeper_http_request_duration_seconds{method}
	gatekeeper_http_requests_in_flight
*/
package middleware
