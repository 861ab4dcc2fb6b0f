package transactor

import (
	"fmt"

	"github.com/mikea/transactor/metrics"
	"github.com/mikea/transactor/tractor"
	"github.com/rs/zerolog"
)

// New returns the setup of a transactor actor owning cfg.Initial.
func New[T any](cfg Config[T]) tractor.SetupHandler {
	cfg = cfg.withDefaults()
	return func(ctx tractor.ActorContext) tractor.MessageHandler {
		t := &transactor[T]{ctx: ctx, cfg: cfg, log: ctx.Log()}
		return tractor.SelectiveReceive(cfg.BufferCapacity, t.idle(cfg.Initial))
	}
}

type transactor[T any] struct {
	ctx tractor.ActorContext
	cfg Config[T]
	log *zerolog.Logger
}

func (t *transactor[T]) idle(value T) tractor.MessageHandler {
	return func(msg interface{}) tractor.MessageHandler {
		switch m := msg.(type) {
		case Begin:
			return t.begin(value, m.ReplyTo)
		case committed[T], rolledBack:
			t.cfg.Metrics.StaleNotification()
			return tractor.Same()
		}
		return t.ignore(msg)
	}
}

func (t *transactor[T]) begin(value T, replyTo tractor.ActorRef) tractor.MessageHandler {
	session := t.ctx.Spawn(newSession(value))
	t.ctx.WatchWith(session, rolledBack{from: session})
	t.ctx.Schedule(t.cfg.SessionTimeout, t.ctx.Self(), rolledBack{from: session, timeout: true})

	t.cfg.Metrics.SessionStarted()
	t.log.Debug().Str("session", fmt.Sprint(session)).Msg("session started")

	reply(replyTo, session)
	return t.inSession(value, session, t.cfg.Metrics.SessionDuration())
}

// inSession leaves Begin unhandled so that SelectiveReceive defers it until
// the session ends. Nothing else is ever deferred.
func (t *transactor[T]) inSession(rollbackValue T, session tractor.ActorRef, duration metrics.Timer) tractor.MessageHandler {
	return func(msg interface{}) tractor.MessageHandler {
		switch m := msg.(type) {
		case committed[T]:
			if m.from != session {
				t.cfg.Metrics.StaleNotification()
				return tractor.Same()
			}
			t.end(session, OutcomeCommitted, duration)
			return t.idle(m.value)
		case rolledBack:
			if m.from != session {
				t.cfg.Metrics.StaleNotification()
				return tractor.Same()
			}
			t.ctx.Stop(session)
			outcome := OutcomeRolledBack
			if m.timeout {
				outcome = OutcomeTimedOut
			}
			t.end(session, outcome, duration)
			return t.idle(rollbackValue)
		case Begin:
			return tractor.Unhandled()
		}
		return t.ignore(msg)
	}
}

// ignore drops messages outside the transactor protocol, such as session
// requests sent to the transactor ref by mistake.
func (t *transactor[T]) ignore(msg interface{}) tractor.MessageHandler {
	t.log.Debug().Type("message", msg).Msg("ignoring foreign message")
	return tractor.Same()
}

func (t *transactor[T]) end(session tractor.ActorRef, outcome string, duration metrics.Timer) {
	duration.ObserveDuration()
	t.cfg.Metrics.SessionEnded(outcome)

	event := t.log.Debug()
	if outcome == OutcomeTimedOut {
		event = t.log.Info().Dur("timeout", t.cfg.SessionTimeout)
	}
	event.Str("session", fmt.Sprint(session)).Str("outcome", outcome).Msg("session ended")
}

func reply(to tractor.ActorRef, msg interface{}) {
	if to != nil {
		to.Tell(msg)
	}
}
