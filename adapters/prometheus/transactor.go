package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mikea/transactor/metrics"
	"github.com/mikea/transactor/transactor"
)

// transactorMetrics implements transactor.Metrics using Prometheus.
type transactorMetrics struct {
	sessionsStarted    prometheus.Counter
	sessionsEnded      *prometheus.CounterVec
	sessionDuration    prometheus.Histogram
	staleNotifications prometheus.Counter
}

// NewTransactorMetrics registers session metrics labelled with the given
// transactor name, so several transactors can share one registry.
func NewTransactorMetrics(reg prometheus.Registerer, name string) transactor.Metrics {
	labels := prometheus.Labels{"transactor": name}
	m := &transactorMetrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "transactor_sessions_started_total",
			Help:        "Total number of granted sessions",
			ConstLabels: labels,
		}),

		sessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "transactor_sessions_ended_total",
			Help:        "Total number of ended sessions by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),

		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "transactor_session_duration_seconds",
			Help:        "Session lifetime in seconds",
			Buckets:     defaultBuckets,
			ConstLabels: labels,
		}),

		staleNotifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "transactor_stale_notifications_total",
			Help:        "Total number of notifications about sessions that already ended",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(
		m.sessionsStarted,
		m.sessionsEnded,
		m.sessionDuration,
		m.staleNotifications,
	)

	return m
}

func (m *transactorMetrics) SessionStarted() {
	m.sessionsStarted.Inc()
}

func (m *transactorMetrics) SessionEnded(outcome string) {
	m.sessionsEnded.WithLabelValues(outcome).Inc()
}

func (m *transactorMetrics) SessionDuration() metrics.Timer {
	return newTimer(m.sessionDuration)
}

func (m *transactorMetrics) StaleNotification() {
	m.staleNotifications.Inc()
}

var _ transactor.Metrics = (*transactorMetrics)(nil)
