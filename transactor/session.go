package transactor

import (
	"github.com/mikea/transactor/tractor"
	"github.com/rs/zerolog"
)

// session is the behavior of a session actor. It is the only writer of its
// working copy and never outlives one Commit or Rollback.
type session[T any] struct {
	transactor tractor.ActorRef
	self       tractor.ActorRef
	log        *zerolog.Logger
	value      T
	applied    map[int64]struct{}
}

func newSession[T any](value T) tractor.SetupHandler {
	return func(ctx tractor.ActorContext) tractor.MessageHandler {
		return newSessionState(value, ctx.Parent(), ctx.Self(), ctx.Log()).receive
	}
}

func newSessionState[T any](value T, transactor, self tractor.ActorRef, log *zerolog.Logger) *session[T] {
	return &session[T]{
		transactor: transactor,
		self:       self,
		log:        log,
		value:      value,
		applied:    make(map[int64]struct{}),
	}
}

func (s *session[T]) receive(msg interface{}) tractor.MessageHandler {
	switch m := msg.(type) {
	case Extract[T]:
		result, err := m.F(s.value)
		if err != nil {
			s.log.Warn().Err(err).Msg("extract failed, rolling back")
			return tractor.Stopped()
		}
		reply(m.ReplyTo, result)
		return tractor.Same()

	case Modify[T]:
		if _, ok := s.applied[m.ID]; ok {
			s.log.Debug().Int64("id", m.ID).Msg("modification already applied")
			reply(m.ReplyTo, m.Ack)
			return tractor.Same()
		}
		next, err := m.F(s.value)
		if err != nil {
			s.log.Warn().Err(err).Int64("id", m.ID).Msg("modify failed, rolling back")
			return tractor.Stopped()
		}
		reply(m.ReplyTo, m.Ack)
		s.value = next
		s.applied[m.ID] = struct{}{}
		return tractor.Same()

	case Commit:
		reply(m.ReplyTo, m.Ack)
		reply(s.transactor, committed[T]{from: s.self, value: s.value})
		return tractor.Stopped()

	case Rollback:
		return tractor.Stopped()
	}
	return tractor.Unhandled()
}
