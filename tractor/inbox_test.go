package tractor

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type ping struct {
	replyTo ActorRef
}

var _ = Describe("Inbox", func() {
	It("receives told messages in order", func() {
		inbox := NewInbox(2)
		inbox.Tell(1)
		inbox.Tell(2)

		first, err := inbox.Receive(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(Equal(1))
		Expect(inbox.C()).To(Receive(Equal(2)))
	})

	It("drops messages when full instead of blocking", func() {
		inbox := NewInbox(1)
		inbox.Tell(1)
		inbox.Tell(2)
		Expect(inbox.C()).To(Receive(Equal(1)))
		Expect(inbox.C()).NotTo(Receive())
	})

	It("gives up when the context is done", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := NewInbox(1).Receive(ctx)
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	})
})

var _ = Describe("Ask", func() {
	It("returns the reply", func() {
		system := startTest(func(ctx ActorContext) MessageHandler {
			return func(msg interface{}) MessageHandler {
				if p, ok := msg.(ping); ok {
					p.replyTo.Tell("pong")
					return Stopped()
				}
				return Unhandled()
			}
		})

		reply, err := Ask(context.Background(), system.Root(), func(replyTo ActorRef) interface{} {
			return ping{replyTo: replyTo}
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal("pong"))
		system.Wait()
	})

	It("times out when nobody answers", func() {
		system := startTest(func(ctx ActorContext) MessageHandler {
			return func(msg interface{}) MessageHandler { return Same() }
		})
		defer func() {
			system.Terminate()
			system.Wait()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := Ask(ctx, system.Root(), func(replyTo ActorRef) interface{} {
			return ping{replyTo: replyTo}
		})
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})
})
