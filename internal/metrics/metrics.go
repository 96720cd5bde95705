package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for a campaign run
type Metrics struct {
	EmailsSentTotal     prometheus.Counter
	SendFailuresTotal   *prometheus.CounterVec
	RowsSkippedTotal    *prometheus.CounterVec
	ReconcileAttempts   prometheus.Counter
	ReconcileResolved   prometheus.Counter
	ReconcileExhausted  prometheus.Counter
	RepliesSentTotal    prometheus.Counter
	ReplyFailuresTotal  prometheus.Counter
	TableWritesTotal    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered on a private
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		EmailsSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheetsend_emails_sent_total",
			Help: "Total number of initial campaign emails dispatched",
		}),
		SendFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheetsend_send_failures_total",
			Help: "Total number of per-row send failures",
		}, []string{"reason"}),
		RowsSkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheetsend_rows_skipped_total",
			Help: "Total number of rows skipped before sending",
		}, []string{"reason"}),
		ReconcileAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheetsend_reconcile_attempts_total",
			Help: "Total number of Message-ID fetch attempts",
		}),
		ReconcileResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheetsend_reconcile_resolved_total",
			Help: "Total number of messages whose permanent Message-ID was found",
		}),
		ReconcileExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheetsend_reconcile_exhausted_total",
			Help: "Total number of messages left without a Message-ID after all retries",
		}),
		RepliesSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheetsend_replies_sent_total",
			Help: "Total number of threaded reminder replies dispatched",
		}),
		ReplyFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheetsend_reply_failures_total",
			Help: "Total number of per-row reply failures",
		}),
		TableWritesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheetsend_table_writes_total",
			Help: "Total number of contact table persist attempts",
		}, []string{"result"}),

		registry: reg,
	}

	reg.MustRegister(
		m.EmailsSentTotal,
		m.SendFailuresTotal,
		m.RowsSkippedTotal,
		m.ReconcileAttempts,
		m.ReconcileResolved,
		m.ReconcileExhausted,
		m.RepliesSentTotal,
		m.ReplyFailuresTotal,
		m.TableWritesTotal,
	)

	return m
}

// Registry returns the private registry for serving.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
