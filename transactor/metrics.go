package transactor

import "github.com/mikea/transactor/metrics"

const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeTimedOut   = "timed_out"
)

// Metrics receives session lifecycle events from a transactor.
type Metrics interface {
	SessionStarted()
	// SessionEnded is reported with one of the Outcome constants.
	SessionEnded(outcome string)
	// SessionDuration is started when a session begins and observed when it ends.
	SessionDuration() metrics.Timer
	// StaleNotification counts commit, rollback and timeout notifications
	// about sessions that already ended.
	StaleNotification()
}

type nopMetrics struct{}

func (nopMetrics) SessionStarted()                {}
func (nopMetrics) SessionEnded(string)            {}
func (nopMetrics) SessionDuration() metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) StaleNotification()             {}

func NopMetrics() Metrics { return nopMetrics{} }
