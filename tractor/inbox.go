package tractor

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Inbox is an ActorRef backed by a channel. It lets code outside the actor
// system receive replies. Tell never blocks: messages that do not fit are
// dropped so a slow reader cannot stall an actor.
type Inbox struct {
	id       string
	messages chan interface{}
}

func NewInbox(size int) *Inbox {
	if size < 1 {
		size = 1
	}
	return &Inbox{
		id:       "inbox-" + gonanoid.Must(),
		messages: make(chan interface{}, size),
	}
}

func (i *Inbox) Tell(msg interface{}) {
	select {
	case i.messages <- msg:
	default:
	}
}

func (i *Inbox) String() string {
	return i.id
}

// C exposes the underlying channel for use in select statements.
func (i *Inbox) C() <-chan interface{} {
	return i.messages
}

// Receive waits for the next message or for ctx to be done.
func (i *Inbox) Receive(ctx context.Context) (interface{}, error) {
	select {
	case msg := <-i.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("inbox %s: %w", i.id, ctx.Err())
	}
}

// Ask sends the message built for a fresh reply address to target and waits
// for the first reply. Actors never report failures to the caller, so a
// missing reply surfaces only as ctx expiring.
func Ask(ctx context.Context, target ActorRef, build func(replyTo ActorRef) interface{}) (interface{}, error) {
	inbox := NewInbox(1)
	target.Tell(build(inbox))
	return inbox.Receive(ctx)
}
