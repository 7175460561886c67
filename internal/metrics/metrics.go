package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	// Traffic: expenses routed into approval.
	SubmissionsTotal prometheus.Counter

	// Decisions recorded, labelled by outcome.
	DecisionsTotal *prometheus.CounterVec

	// Finalized instances, labelled by terminal state.
	FinalizesTotal *prometheus.CounterVec
}

// New creates the engine collectors registered against reg. A nil
// registerer yields a private registry, which keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		SubmissionsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "approval_submissions_total",
			Help: "Total number of expenses submitted for approval.",
		}),

		DecisionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "approval_decisions_total",
			Help: "Total number of approver decisions recorded.",
		}, []string{"outcome"}),

		FinalizesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "approval_finalizes_total",
			Help: "Total number of approval instances finalized.",
		}, []string{"state"}),
	}
}
