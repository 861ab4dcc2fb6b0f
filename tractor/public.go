package tractor

import (
	"time"

	"github.com/rs/zerolog"
)

type ActorSystem interface {
	Root() ActorRef
	// Wait blocks until the root actor and all of its descendants stopped.
	Wait()
	// Terminate asks the root actor to stop.
	Terminate()
}

type ActorRef interface {
	Tell(msg interface{})
}

type ActorContext interface {
	Self() ActorRef
	// Parent returns nil for the root actor.
	Parent() ActorRef
	Children() []ActorRef
	Spawn(setup SetupHandler) ActorRef
	// Stop asks a child to stop. Stopping an already stopped actor is a no-op.
	Stop(child ActorRef)
	// Watch delivers Terminated{Ref: actor} to self once actor stops.
	Watch(actor ActorRef)
	// WatchWith delivers msg to self once actor stops. If actor already
	// stopped, msg is delivered right away.
	WatchWith(actor ActorRef, msg interface{})
	// Schedule sends msg to target after delay. Timers that have not fired
	// are cancelled when this actor stops.
	Schedule(delay time.Duration, target ActorRef, msg interface{})
	DeliverSignals(value bool)
	Log() *zerolog.Logger
}

type MessageHandler func(message interface{}) MessageHandler
type SetupHandler func(ctx ActorContext) MessageHandler

// Signal marks lifecycle notifications that are not part of an actor's
// message protocol.
type Signal interface {
	signal()
}

type PostInitSignal struct{}
type PreStopSignal struct{}
type PostStopSignal struct{}

func (PostInitSignal) signal() {}
func (PreStopSignal) signal()  {}
func (PostStopSignal) signal() {}

type Terminated struct {
	Ref ActorRef
}

func Stopped() MessageHandler {
	return stopped.handle
}

// Same keeps the current behavior. Returning nil has the same effect.
func Same() MessageHandler {
	return nil
}

// Unhandled reports that the current behavior does not accept the message.
// The runtime logs and drops it; SelectiveReceive buffers it instead.
func Unhandled() MessageHandler {
	return unhandled.handle
}
