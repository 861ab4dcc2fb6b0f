package tractor

import (
	"errors"
	"fmt"
)

var ErrBufferOverflow = errors.New("message buffer overflow")

// MessageBuffer is a bounded FIFO of deferred messages. It is owned by a
// single actor and is not safe for concurrent use.
type MessageBuffer struct {
	capacity int
	messages []interface{}
}

// NewMessageBuffer returns an empty buffer holding at most capacity messages.
// A zero capacity is legal: every Push fails.
func NewMessageBuffer(capacity int) *MessageBuffer {
	if capacity < 0 {
		capacity = 0
	}
	return &MessageBuffer{capacity: capacity}
}

// Push appends msg, or returns an error wrapping ErrBufferOverflow when the
// buffer is full. The buffer is left unchanged on failure.
func (b *MessageBuffer) Push(msg interface{}) error {
	if len(b.messages) >= b.capacity {
		return fmt.Errorf("%w: capacity %d exceeded by %T", ErrBufferOverflow, b.capacity, msg)
	}
	b.messages = append(b.messages, msg)
	return nil
}

// Drain returns the buffered messages in arrival order and empties the buffer.
func (b *MessageBuffer) Drain() []interface{} {
	messages := b.messages
	b.messages = nil
	return messages
}

func (b *MessageBuffer) Len() int {
	return len(b.messages)
}

func (b *MessageBuffer) Capacity() int {
	return b.capacity
}
