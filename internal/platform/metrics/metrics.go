package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores del core de grants y del scanner.
// Se registran en el registry default; el router expone /metrics.
var (
	GrantsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grants_issued_total",
		Help: "Grants issued, by kind (access_code, share_token, vet_token, vet_access).",
	}, []string{"kind"})

	GrantsRedeemed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grants_redeemed_total",
		Help: "Grant redemption attempts, by kind and outcome.",
	}, []string{"kind", "outcome"})

	ExpiryNotices = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expiry_notices_total",
		Help: "Expiry notifications emitted by the scanner, by record kind.",
	}, []string{"kind"})

	PurgedTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purged_tokens_total",
		Help: "Stale unused tokens removed by the cleanup job, by kind.",
	}, []string{"kind"})

	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "job_runs_total",
		Help: "Scheduled job executions, by job name and outcome.",
	}, []string{"job", "outcome"})
)
