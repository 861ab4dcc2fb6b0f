package tractor

// SelectiveReceive makes a partial behavior total. Messages for which the
// wrapped behavior returns Unhandled are deferred into a MessageBuffer of the
// given capacity. As soon as the wrapped behavior handles a message, every
// deferred message is replayed, in arrival order, against the resulting
// behavior before the next message from the mailbox is taken. Messages that
// are still not handled during the replay are deferred again.
//
// Deferring past capacity panics with an error wrapping ErrBufferOverflow,
// which stops the actor as a crash. Signals bypass the current behavior and
// are interpreted by initial.
func SelectiveReceive(capacity int, initial MessageHandler) MessageHandler {
	s := &selective{capacity: capacity, initial: initial}
	return s.wrap(initial, NewMessageBuffer(capacity))
}

type selective struct {
	capacity int
	initial  MessageHandler
}

func (s *selective) wrap(current MessageHandler, buffer *MessageBuffer) MessageHandler {
	return func(msg interface{}) MessageHandler {
		if _, ok := msg.(Signal); ok {
			return s.transition(s.initial(msg), buffer)
		}

		next := current(msg)
		if IsUnhandled(next) {
			stash(buffer, msg)
			return Same()
		}
		if next == nil {
			next = current
		}
		return s.transition(next, buffer)
	}
}

// transition moves the composite to next, replaying whatever was deferred.
// Unhandled and nil keep the composite as it is.
func (s *selective) transition(next MessageHandler, buffer *MessageBuffer) MessageHandler {
	switch {
	case next == nil, IsUnhandled(next):
		return Same()
	case IsStopped(next):
		return next
	}
	return s.replay(next, buffer.Drain())
}

func (s *selective) replay(state MessageHandler, pending []interface{}) MessageHandler {
	buffer := NewMessageBuffer(s.capacity)
	for len(pending) > 0 {
		msg := pending[0]
		pending = pending[1:]

		next := state(msg)
		switch {
		case IsUnhandled(next):
			stash(buffer, msg)
		case IsStopped(next):
			return next
		default:
			if next != nil {
				state = next
			}
			// messages deferred again arrived before the rest of pending
			pending = append(buffer.Drain(), pending...)
		}
	}
	return s.wrap(state, buffer)
}

func stash(buffer *MessageBuffer, msg interface{}) {
	if err := buffer.Push(msg); err != nil {
		panic(err)
	}
}
