package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the things worth graphing: operations by outcome,
// credit movement, and upstream failures.
type Metrics struct {
	Operations      *prometheus.CounterVec
	CreditsDebited  prometheus.Counter
	CreditsRefunded prometheus.Counter
	UpstreamErrors  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qb_operations_total",
			Help: "QuickBooks operations processed, by action and outcome.",
		}, []string{"action", "outcome"}),
		CreditsDebited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qb_credits_debited_total",
			Help: "Delete credits consumed by metered operations.",
		}),
		CreditsRefunded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qb_credits_refunded_total",
			Help: "Delete credits refunded after definite upstream failures.",
		}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qb_upstream_errors_total",
			Help: "QuickBooks API failures, by error kind.",
		}, []string{"kind"}),
	}
}
