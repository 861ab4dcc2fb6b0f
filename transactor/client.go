package transactor

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikea/transactor/tractor"
)

var ErrUnexpectedReply = errors.New("unexpected reply")

type commitAck struct{}

// Client talks to a transactor from outside the actor system. Every call
// waits for the reply until ctx is done; a session that ended never replies,
// so callers should always pass a context with a deadline.
type Client[T any] struct {
	transactor tractor.ActorRef
}

func NewClient[T any](transactor tractor.ActorRef) *Client[T] {
	return &Client[T]{transactor: transactor}
}

// Begin waits until the transactor grants a session. If ctx ends while the
// request is still deferred, the request stays queued: the transactor later
// grants a session nobody holds, and that session blocks every other Begin
// until it times out after SessionTimeout.
func (c *Client[T]) Begin(ctx context.Context) (*Session[T], error) {
	res, err := tractor.Ask(ctx, c.transactor, func(replyTo tractor.ActorRef) interface{} {
		return Begin{ReplyTo: replyTo}
	})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	ref, ok := res.(tractor.ActorRef)
	if !ok {
		return nil, fmt.Errorf("begin: %w: %T", ErrUnexpectedReply, res)
	}
	return &Session[T]{ref: ref}, nil
}

// Session is a handle on a granted session.
type Session[T any] struct {
	ref tractor.ActorRef
}

func (s *Session[T]) Ref() tractor.ActorRef {
	return s.ref
}

// Get returns the session's working copy.
func (s *Session[T]) Get(ctx context.Context) (T, error) {
	return Query(ctx, s, func(v T) (T, error) { return v, nil })
}

// Modify applies f once per id. Retrying with the same id after a lost
// acknowledgement is safe.
func (s *Session[T]) Modify(ctx context.Context, id int64, f func(T) (T, error)) error {
	res, err := tractor.Ask(ctx, s.ref, func(replyTo tractor.ActorRef) interface{} {
		return Modify[T]{F: f, ID: id, Ack: id, ReplyTo: replyTo}
	})
	if err != nil {
		return fmt.Errorf("modify %d: %w", id, err)
	}
	if res != id {
		return fmt.Errorf("modify %d: %w: %v", id, ErrUnexpectedReply, res)
	}
	return nil
}

func (s *Session[T]) Commit(ctx context.Context) error {
	res, err := tractor.Ask(ctx, s.ref, func(replyTo tractor.ActorRef) interface{} {
		return Commit{Ack: commitAck{}, ReplyTo: replyTo}
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if _, ok := res.(commitAck); !ok {
		return fmt.Errorf("commit: %w: %v", ErrUnexpectedReply, res)
	}
	return nil
}

func (s *Session[T]) Rollback() {
	s.ref.Tell(Rollback{})
}

// Query runs f against the session's working copy and returns its result.
func Query[T, U any](ctx context.Context, s *Session[T], f func(T) (U, error)) (U, error) {
	var zero U
	res, err := tractor.Ask(ctx, s.ref, func(replyTo tractor.ActorRef) interface{} {
		return Extract[T]{
			F: func(v T) (interface{}, error) {
				u, err := f(v)
				return u, err
			},
			ReplyTo: replyTo,
		}
	})
	if err != nil {
		return zero, fmt.Errorf("extract: %w", err)
	}
	if res == nil {
		return zero, nil
	}
	u, ok := res.(U)
	if !ok {
		return zero, fmt.Errorf("extract: %w: %T", ErrUnexpectedReply, res)
	}
	return u, nil
}
