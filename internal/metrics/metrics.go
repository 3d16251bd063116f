// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthEvents counts gateway transitions by action (login, refresh, logout, me) and outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "college",
		Subsystem: "auth",
		Name:      "events_total",
		Help:      "Auth gateway transitions by action and outcome.",
	}, []string{"action", "outcome"})

	// RevocationChecks counts ledger lookups by result.
	RevocationChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "college",
		Subsystem: "auth",
		Name:      "revocation_checks_total",
		Help:      "Revocation ledger checks by result (cache_hit, revoked, clear, error).",
	}, []string{"result"})

	LoginIDsAllocated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "college",
		Subsystem: "identity",
		Name:      "login_ids_allocated_total",
		Help:      "Login id allocations by role and outcome.",
	}, []string{"role", "outcome"})

	LedgerPruned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "college",
		Subsystem: "auth",
		Name:      "ledger_pruned_total",
		Help:      "Expired revocation entries removed by the worker.",
	})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "college",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter, by scope.",
	}, []string{"scope"})

	AuditEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "college",
		Subsystem: "audit",
		Name:      "events_total",
		Help:      "Audit events by stage (published, dropped, stored, failed).",
	}, []string{"stage"})
)
