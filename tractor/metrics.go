package tractor

import "github.com/mikea/transactor/metrics"

// Metrics receives runtime events. Implementations must be safe for
// concurrent use since every actor runs on its own goroutine.
type Metrics interface {
	ActorSpawned()
	// ActorStopped is reported once per actor; crashed is true when the actor
	// stopped because its setup or a handler panicked.
	ActorStopped(crashed bool)
	MessageDuration() metrics.Timer
	MessageProcessed(outcome string)
	DeadLetter()
}

const (
	OutcomeHandled   = "handled"
	OutcomeUnhandled = "unhandled"
	OutcomePanic     = "panic"
)

type nopMetrics struct{}

func (nopMetrics) ActorSpawned()                  {}
func (nopMetrics) ActorStopped(bool)              {}
func (nopMetrics) MessageDuration() metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) MessageProcessed(string)        {}
func (nopMetrics) DeadLetter()                    {}

// NopMetrics returns a Metrics implementation that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
