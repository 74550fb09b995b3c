// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GateDecisions counts outcomes translated by the gate.
	// Labels:
	//   - outcome: "anonymous", "authenticated", "authenticated_match",
	//     "unauthenticated", "forbidden"
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_gate_decisions_total",
			Help: "Total number of authorization outcomes produced by the gate",
		},
		[]string{"outcome"},
	)

	// LoginAttempts counts login attempts.
	// Labels:
	//   - outcome: "success", "invalid_credentials", "error"
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// LoginDuration measures the whole login decision, including the store
	// lookup and the bcrypt comparison. Failed and successful logins share
	// one histogram so the two can be compared.
	LoginDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "gatekeeper_login_duration_seconds",
			Help: "Duration of login operations in seconds",
			// bcrypt dominates: 10ms to 5s
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)

// Login outcome labels.
const (
	LoginOutcomeSuccess            = "success"
	LoginOutcomeInvalidCredentials = "invalid_credentials"
	LoginOutcomeError              = "error"
)

// RecordGateDecision records one translated outcome.
func RecordGateDecision(o Outcome) {
	GateDecisions.WithLabelValues(o.Label()).Inc()
}

// RecordLogin records a login attempt.
func RecordLogin(outcome string, duration time.Duration) {
	LoginAttempts.WithLabelValues(outcome).Inc()
	LoginDuration.Observe(duration.Seconds())
}
