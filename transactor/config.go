package transactor

import "time"

const (
	DefaultBufferCapacity = 30
	DefaultSessionTimeout = time.Second
)

type Config[T any] struct {
	// Initial is the committed value before the first session.
	Initial T
	// SessionTimeout bounds each session. Zero or negative selects
	// DefaultSessionTimeout.
	SessionTimeout time.Duration
	// BufferCapacity is how many Begin requests may wait for the live session.
	// Zero is legal and means none may wait.
	BufferCapacity int
	Metrics        Metrics
}

func DefaultConfig[T any](initial T) Config[T] {
	return Config[T]{
		Initial:        initial,
		SessionTimeout: DefaultSessionTimeout,
		BufferCapacity: DefaultBufferCapacity,
	}
}

func (c Config[T]) withDefaults() Config[T] {
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = DefaultSessionTimeout
	}
	if c.BufferCapacity < 0 {
		c.BufferCapacity = 0
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics()
	}
	return c
}
