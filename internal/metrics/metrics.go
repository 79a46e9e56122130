// Package metrics registers the Prometheus collectors shared across the
// gateway. Collectors use the default registry; the server exposes them
// on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerRequests counts ledger RPC calls by operation and outcome
	// (ok, rejected, unavailable, not_found).
	LedgerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitchain",
		Subsystem: "ledger",
		Name:      "requests_total",
		Help:      "Ledger RPC calls by operation and outcome.",
	}, []string{"op", "outcome"})

	// LedgerRequestDuration observes ledger RPC latency per operation.
	LedgerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "splitchain",
		Subsystem: "ledger",
		Name:      "request_duration_seconds",
		Help:      "Ledger RPC latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	// SettlementAttempts counts settlement attempts by mode (single, all)
	// and terminal state (succeeded, rejected, failed).
	SettlementAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitchain",
		Subsystem: "settle",
		Name:      "attempts_total",
		Help:      "Settlement attempts by mode and terminal state.",
	}, []string{"mode", "state"})
)
