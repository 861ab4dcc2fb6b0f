package tractor

import "github.com/rs/zerolog"

const defaultMailboxSize = 1000

type options struct {
	logger      zerolog.Logger
	metrics     Metrics
	mailboxSize int
}

type Option func(*options)

// WithLogger sets the root logger. Every actor logs through a child of it
// tagged with the actor id. Defaults to a disabled logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithMailboxSize sets the per-actor mailbox capacity. Senders block while a
// mailbox is full.
func WithMailboxSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.mailboxSize = size
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:      zerolog.Nop(),
		metrics:     NopMetrics(),
		mailboxSize: defaultMailboxSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
