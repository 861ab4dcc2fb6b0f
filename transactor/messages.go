package transactor

import "github.com/mikea/transactor/tractor"

// Begin asks the transactor for a session. ReplyTo receives the session's
// tractor.ActorRef once every earlier session has ended.
type Begin struct {
	ReplyTo tractor.ActorRef
}

// Extract runs F against the session's working copy and sends the result to
// ReplyTo. An error from F ends the session.
type Extract[T any] struct {
	F       func(T) (interface{}, error)
	ReplyTo tractor.ActorRef
}

// Modify replaces the working copy with F's result and sends Ack to ReplyTo.
// A Modify whose ID was already applied in this session is acknowledged
// without running F again. An error from F ends the session.
type Modify[T any] struct {
	F       func(T) (T, error)
	ID      int64
	Ack     interface{}
	ReplyTo tractor.ActorRef
}

// Commit sends Ack to ReplyTo, publishes the working copy to the transactor
// and ends the session.
type Commit struct {
	Ack     interface{}
	ReplyTo tractor.ActorRef
}

// Rollback ends the session without replying.
type Rollback struct{}

type committed[T any] struct {
	from  tractor.ActorRef
	value T
}

type rolledBack struct {
	from    tractor.ActorRef
	timeout bool
}
