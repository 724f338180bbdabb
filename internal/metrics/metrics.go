// Package metrics holds the prometheus collectors of the session core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sessiond"

// Outcome labels.
const (
	OutcomeSuccess      = "success"
	OutcomeAuthRejected = "auth_rejected"
	OutcomeError        = "error"
	OutcomeInvalid      = "invalid"
	OutcomeServer       = "server"
	OutcomeFallback     = "fallback"
	OutcomeSuperseded   = "superseded"
)

//nolint:gochecknoglobals
var (
	// SessionTransitions counts session state machine transitions by target state.
	SessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Session state transitions by target state.",
	}, []string{"to"})

	// IdentityFetches counts GET /current-user attempts by outcome.
	IdentityFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_fetch_attempts_total",
		Help:      "Identity fetch attempts by outcome.",
	}, []string{"outcome"})

	// TokenRefreshes counts refresh token exchanges by outcome.
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Token refreshes by outcome.",
	}, []string{"outcome"})

	// PermissionComputations counts permission set computations by source.
	PermissionComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_computations_total",
		Help:      "Permission set computations by outcome.",
	}, []string{"outcome"})

	// PermissionComputeSeconds observes the fetch and merge latency.
	PermissionComputeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "permission_compute_duration_seconds",
		Help:      "Latency of the permission fetch and merge cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// Authenticated is 1 while an identity is held.
	Authenticated = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "1 while the session holds an authenticated identity.",
	})
)
