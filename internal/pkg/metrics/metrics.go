// Package metrics defines and registers all custom Prometheus metrics for the
// session gateway. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "session_gateway"

// ── Routing metrics ───────────────────────────────────────────────────────────

// RedirectsTotal counts redirect decisions that were issued to a navigator.
// Labels:
//   - trigger: "entry", "navigation" or "guard:<requirement>"
//   - target: the redirect path (bounded by the route table)
var RedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redirects_total",
		Help:      "Total number of redirects issued, by trigger and target.",
	},
	[]string{"trigger", "target"},
)

// GuardDecisionsTotal counts settled guard checks.
// Labels:
//   - requirement: "seeker", "owner", "admin" or "authenticated"
//   - state: "authorized" or "redirecting"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by requirement and resulting state.",
	},
	[]string{"requirement", "state"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionEventsTotal counts events accepted by the bus.
// Label:
//   - kind: "session_logged_in", "session_logged_out" or "storage"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session events emitted, by kind.",
	},
	[]string{"kind"},
)

// CorruptSessionsTotal counts stored records that were discarded on read.
// Label:
//   - reason: "invalid_json", "token_without_user" or "user_without_token"
var CorruptSessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "corrupt_sessions_total",
		Help:      "Total number of corrupt session records cleaned up on read.",
	},
	[]string{"reason"},
)

// LoginsTotal counts login and signup attempts.
// Labels:
//   - method: "login" or "register"
//   - result: "ok" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login and registration attempts, by result.",
	},
	[]string{"method", "result"},
)

// ActiveTabs tracks the number of mounted SPA instances on this process.
var ActiveTabs = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_tabs",
		Help:      "Current number of tabs with an open event stream.",
	},
)

// EventQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "event_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
