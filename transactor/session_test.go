package transactor

import (
	"errors"

	"github.com/mikea/transactor/tractor"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
)

var _ = Describe("session", func() {
	var (
		parent *tractor.Inbox
		self   *tractor.Inbox
		caller *tractor.Inbox
		s      *session[int]
		log    zerolog.Logger
	)

	plus := func(n int, calls *int) func(int) (int, error) {
		return func(v int) (int, error) {
			*calls++
			return v + n, nil
		}
	}

	BeforeEach(func() {
		parent = tractor.NewInbox(4)
		self = tractor.NewInbox(1)
		caller = tractor.NewInbox(4)
		log = testLogger()
		s = newSessionState(10, parent, self, &log)
	})

	It("extract replies without changing the value", func() {
		next := s.receive(Extract[int]{
			F:       func(v int) (interface{}, error) { return v * 2, nil },
			ReplyTo: caller,
		})
		Expect(next).To(BeNil())
		Expect(caller.C()).To(Receive(Equal(20)))
		Expect(s.value).To(Equal(10))
	})

	It("modify applies the transform and acknowledges", func() {
		calls := 0
		next := s.receive(Modify[int]{F: plus(5, &calls), ID: 1, Ack: "ok", ReplyTo: caller})
		Expect(next).To(BeNil())
		Expect(caller.C()).To(Receive(Equal("ok")))
		Expect(s.value).To(Equal(15))
	})

	It("modify is idempotent per id", func() {
		calls := 0
		modify := Modify[int]{F: plus(5, &calls), ID: 7, Ack: "A", ReplyTo: caller}
		s.receive(modify)
		s.receive(modify)

		Expect(caller.C()).To(Receive(Equal("A")))
		Expect(caller.C()).To(Receive(Equal("A")))
		Expect(calls).To(Equal(1))
		Expect(s.value).To(Equal(15))
		Expect(s.applied).To(HaveLen(1))
	})

	It("distinct ids are all applied", func() {
		calls := 0
		s.receive(Modify[int]{F: plus(1, &calls), ID: 1, Ack: 1, ReplyTo: caller})
		s.receive(Modify[int]{F: plus(1, &calls), ID: 2, Ack: 2, ReplyTo: caller})
		Expect(s.value).To(Equal(12))
		Expect(s.applied).To(HaveLen(2))
	})

	It("a failing modify stops the session without replying", func() {
		next := s.receive(Modify[int]{
			F:       func(int) (int, error) { return 0, errors.New("nope") },
			ID:      1,
			Ack:     "ok",
			ReplyTo: caller,
		})
		Expect(tractor.IsStopped(next)).To(BeTrue())
		Expect(caller.C()).NotTo(Receive())
		Expect(parent.C()).NotTo(Receive())
		Expect(s.applied).To(BeEmpty())
	})

	It("a failing extract stops the session without replying", func() {
		next := s.receive(Extract[int]{
			F:       func(int) (interface{}, error) { return nil, errors.New("nope") },
			ReplyTo: caller,
		})
		Expect(tractor.IsStopped(next)).To(BeTrue())
		Expect(caller.C()).NotTo(Receive())
	})

	It("commit acknowledges, then notifies the transactor and stops", func() {
		calls := 0
		s.receive(Modify[int]{F: plus(5, &calls), ID: 1, Ack: "ok", ReplyTo: caller})
		Expect(caller.C()).To(Receive())

		next := s.receive(Commit{Ack: "done", ReplyTo: caller})
		Expect(tractor.IsStopped(next)).To(BeTrue())
		Expect(caller.C()).To(Receive(Equal("done")))

		var msg interface{}
		Expect(parent.C()).To(Receive(&msg))
		Expect(msg).To(Equal(committed[int]{from: self, value: 15}))
	})

	It("rollback stops silently", func() {
		next := s.receive(Rollback{})
		Expect(tractor.IsStopped(next)).To(BeTrue())
		Expect(parent.C()).NotTo(Receive())
	})

	It("does not accept messages of another value type", func() {
		next := s.receive(Extract[string]{
			F:       func(string) (interface{}, error) { return nil, nil },
			ReplyTo: caller,
		})
		Expect(tractor.IsUnhandled(next)).To(BeTrue())
		Expect(caller.C()).NotTo(Receive())
	})
})
