package tractor

import "reflect"

var stopped stoppedBehavior
var unhandled unhandledBehavior

var (
	stoppedPointer   = reflect.ValueOf(Stopped()).Pointer()
	unhandledPointer = reflect.ValueOf(Unhandled()).Pointer()
)

type stoppedBehavior struct {
}

func (s *stoppedBehavior) handle(_ interface{}) MessageHandler {
	panic("should not be called")
}

type unhandledBehavior struct {
}

func (u *unhandledBehavior) handle(_ interface{}) MessageHandler {
	panic("should not be called")
}

// IsStopped reports whether handler is the Stopped behavior.
func IsStopped(handler MessageHandler) bool {
	return handler != nil && reflect.ValueOf(handler).Pointer() == stoppedPointer
}

// IsUnhandled reports whether handler is the Unhandled behavior.
func IsUnhandled(handler MessageHandler) bool {
	return handler != nil && reflect.ValueOf(handler).Pointer() == unhandledPointer
}
