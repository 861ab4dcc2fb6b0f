package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mikea/transactor/metrics"
	"github.com/mikea/transactor/tractor"
)

// actorMetrics implements tractor.Metrics using Prometheus.
type actorMetrics struct {
	actorsLive      prometheus.Gauge
	actorsStopped   *prometheus.CounterVec
	messageDuration prometheus.Histogram
	messagesTotal   *prometheus.CounterVec
	deadLetters     prometheus.Counter
}

func NewActorMetrics(reg prometheus.Registerer) tractor.Metrics {
	m := &actorMetrics{
		actorsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tractor_actors_live",
			Help: "Number of actors currently running",
		}),

		actorsStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tractor_actors_stopped_total",
			Help: "Total number of stopped actors",
		}, []string{"crashed"}),

		messageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tractor_message_duration_seconds",
			Help:    "Message handling time in seconds",
			Buckets: defaultBuckets,
		}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tractor_messages_total",
			Help: "Total number of messages delivered to handlers",
		}, []string{"outcome"}),

		deadLetters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tractor_dead_letters_total",
			Help: "Total number of messages sent to stopped actors",
		}),
	}

	reg.MustRegister(
		m.actorsLive,
		m.actorsStopped,
		m.messageDuration,
		m.messagesTotal,
		m.deadLetters,
	)

	return m
}

func (m *actorMetrics) ActorSpawned() {
	m.actorsLive.Inc()
}

func (m *actorMetrics) ActorStopped(crashed bool) {
	m.actorsLive.Dec()
	m.actorsStopped.WithLabelValues(boolToStr(crashed)).Inc()
}

func (m *actorMetrics) MessageDuration() metrics.Timer {
	return newTimer(m.messageDuration)
}

func (m *actorMetrics) MessageProcessed(outcome string) {
	m.messagesTotal.WithLabelValues(outcome).Inc()
}

func (m *actorMetrics) DeadLetter() {
	m.deadLetters.Inc()
}

var _ tractor.Metrics = (*actorMetrics)(nil)
