// Package metrics defines and registers all custom Prometheus metrics for the
// kokoro service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kokoro"

// ── Identity ──────────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts sign-up, sign-in and sign-out attempts.
// Labels:
//   - action: "signup", "signin" or "signout"
//   - result: "ok" or a short failure reason (e.g. "invalid_credentials", "exists")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of identity operations, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Registry ──────────────────────────────────────────────────────────────────

// ProfilesRegisteredTotal counts usernames claimed through setup or the
// dashboard guard.
// Label:
//   - via: "setup" or "dashboard"
var ProfilesRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profiles_registered_total",
		Help:      "Total number of profiles registered.",
	},
	[]string{"via"},
)

// ProfileRenamesTotal counts rename attempts.
// Label:
//   - result: "ok", "taken", "invalid", "forbidden" or "error"
var ProfileRenamesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_renames_total",
		Help:      "Total number of username rename attempts, by result.",
	},
	[]string{"result"},
)

// AvailabilityChecksTotal counts username availability probes.
// Label:
//   - result: "available", "taken" or "invalid"
var AvailabilityChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "availability_checks_total",
		Help:      "Total number of username availability probes, by result.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts ownership guard outcomes on dashboard access.
// Labels:
//   - outcome: "owner", "created" or "redirect"
//   - reason: redirect reason, empty for owner/created
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of dashboard ownership decisions.",
	},
	[]string{"outcome", "reason"},
)

// ── Ledger ────────────────────────────────────────────────────────────────────

// EntriesAppendedTotal counts entries successfully appended.
// Label:
//   - stream: "thought" or "people"
var EntriesAppendedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_appended_total",
		Help:      "Total number of entries appended, by stream.",
	},
	[]string{"stream"},
)

// ── Public pages ──────────────────────────────────────────────────────────────

// PublicViewDuration measures how long assembling a public profile takes.
// Label:
//   - result: "ok", "not_found" or "error"
var PublicViewDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "public_view_duration_seconds",
		Help:      "Duration of public profile view assembly.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
