package tractor

import (
	"errors"
	"sync"
	"time"

	"github.com/mikea/transactor/metrics"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ActorSystem", func() {
	It("supports actor stopped after setup", func() {
		initialized := false
		actor := func(ctx ActorContext) MessageHandler {
			initialized = true
			return Stopped()
		}
		system := startTest(actor)
		system.Wait()

		Expect(initialized).To(BeTrue())
	})

	It("countdown", func() {
		system := startTest(Countdown(10))
		for i := 0; i < 10; i++ {
			system.Root().Tell("")
		}
		system.Wait()
	})

	It("Terminate stops the root", func() {
		system := startTest(func(ctx ActorContext) MessageHandler {
			return func(msg interface{}) MessageHandler { return Same() }
		})
		system.Terminate()
		system.Wait()
	})

	Context("Signals", func() {
		It("PostInit/PreStop/PostStop", func() {
			var received []string

			setup := func(ctx ActorContext) MessageHandler {
				ctx.DeliverSignals(true)

				return func(msg interface{}) MessageHandler {
					switch msg.(type) {
					case PostInitSignal:
						received = append(received, "PostInit")
						return Stopped()
					case PreStopSignal:
						received = append(received, "PreStop")
						return nil
					case PostStopSignal:
						received = append(received, "PostStop")
						return nil
					}
					return Unhandled()
				}
			}

			system := startTest(setup)
			system.Wait()

			Expect(received).To(Equal([]string{"PostInit", "PreStop", "PostStop"}))
		})

		It("are not delivered by default", func() {
			var received []interface{}
			system := startTest(func(ctx ActorContext) MessageHandler {
				return func(msg interface{}) MessageHandler {
					received = append(received, msg)
					return Stopped()
				}
			})
			system.Root().Tell("stop")
			system.Wait()

			Expect(received).To(Equal([]interface{}{"stop"}))
		})
	})

	Context("Behavior", func() {
		It("Switching behavior", func() {
			var seen []string
			stopBehavior := func(msg interface{}) MessageHandler {
				if msg == "stop" {
					seen = append(seen, "stop")
					return Stopped()
				}
				return Unhandled()
			}
			startBehavior := func(msg interface{}) MessageHandler {
				if msg == "start" {
					seen = append(seen, "start")
					return stopBehavior
				}
				return Unhandled()
			}

			system := startTest(func(ctx ActorContext) MessageHandler {
				return startBehavior
			})
			system.Root().Tell("stop")
			system.Root().Tell("start")
			system.Root().Tell("stop")
			system.Wait()

			Expect(seen).To(Equal([]string{"start", "stop"}))
		})

		It("panic stops the actor", func() {
			recorder := &recordingMetrics{}
			system := startTest(func(ctx ActorContext) MessageHandler {
				return func(msg interface{}) MessageHandler {
					panic(errors.New("boom"))
				}
			}, WithMetrics(recorder))
			system.Root().Tell("anything")
			system.Wait()

			Expect(recorder.outcome(OutcomePanic)).To(Equal(1))
			Expect(recorder.crashed()).To(Equal(1))
		})

		It("panic in setup stops the actor", func() {
			recorder := &recordingMetrics{}
			system := startTest(func(ctx ActorContext) MessageHandler {
				panic("no setup for you")
			}, WithMetrics(recorder))
			system.Wait()

			Expect(recorder.crashed()).To(Equal(1))
		})
	})

	Context("ActorContext", func() {
		Context("Self", func() {
			It("Tell to self", func() {
				startReceived := false
				stopReceived := false

				parent := func(ctx ActorContext) MessageHandler {
					ctx.Self().Tell("start")
					ctx.Self().Tell("stop")
					ctx.Self().Tell("wrong")
					return func(msg interface{}) MessageHandler {
						if msg == "start" {
							startReceived = true
							return nil
						}
						if msg == "stop" {
							stopReceived = startReceived
							return Stopped()
						}
						return Unhandled()
					}
				}

				system := startTest(parent)
				system.Wait()
				Expect(startReceived).To(BeTrue())
				Expect(stopReceived).To(BeTrue())
			})
		})

		Context("Parent", func() {
			It("is nil for the root", func() {
				var parent ActorRef = &Inbox{}
				system := startTest(func(ctx ActorContext) MessageHandler {
					parent = ctx.Parent()
					return Stopped()
				})
				system.Wait()
				Expect(parent).To(BeNil())
			})
		})

		Context("Spawn", func() {
			It("Spawn start a child", func() {
				child := func(ctx ActorContext) MessageHandler {
					ctx.Parent().Tell("stop")
					return Stopped()
				}

				parent := func(ctx ActorContext) MessageHandler {
					ctx.Spawn(child)
					return func(msg interface{}) MessageHandler {
						if msg == "stop" {
							return Stopped()
						}
						return Unhandled()
					}
				}

				system := startTest(parent)
				system.Wait()
			})
		})

		Context("Children", func() {
			It("empty on start", func() {
				var children []ActorRef
				actor := func(ctx ActorContext) MessageHandler {
					children = ctx.Children()
					return Stopped()
				}
				system := startTest(actor)
				system.Wait()
				Expect(children).To(BeEmpty())
			})

			It("spawn adds children", func() {
				child := func(ctx ActorContext) MessageHandler {
					return func(msg interface{}) MessageHandler {
						return Stopped()
					}
				}

				var before, after []ActorRef
				actor := func(ctx ActorContext) MessageHandler {
					before = ctx.Children()
					ref := ctx.Spawn(child)
					after = ctx.Children()
					ref.Tell("stop")
					return Stopped()
				}
				system := startTest(actor)
				system.Wait()
				Expect(before).To(BeEmpty())
				Expect(after).To(HaveLen(1))
			})
		})

		Context("Stop", func() {
			It("stops a child and is idempotent", func() {
				inbox := NewInbox(4)
				child := func(ctx ActorContext) MessageHandler {
					return func(msg interface{}) MessageHandler { return Same() }
				}
				parent := func(ctx ActorContext) MessageHandler {
					ref := ctx.Spawn(child)
					ctx.WatchWith(ref, "child stopped")
					ctx.Stop(ref)
					ctx.Stop(ref)
					return func(msg interface{}) MessageHandler {
						inbox.Tell(msg)
						return Stopped()
					}
				}
				system := startTest(parent)
				system.Wait()
				Expect(inbox.C()).To(Receive(Equal("child stopped")))
			})
		})

		Context("Watch", func() {
			It("delivers Terminated when the watched actor stops", func() {
				var terminated interface{}
				var childRef ActorRef
				parent := func(ctx ActorContext) MessageHandler {
					childRef = ctx.Spawn(func(ctx ActorContext) MessageHandler {
						return func(msg interface{}) MessageHandler { return Stopped() }
					})
					ctx.Watch(childRef)
					childRef.Tell("stop")
					return func(msg interface{}) MessageHandler {
						terminated = msg
						return Stopped()
					}
				}
				system := startTest(parent)
				system.Wait()
				Expect(terminated).To(Equal(Terminated{Ref: childRef}))
			})

			It("notifies on crash", func() {
				var got interface{}
				parent := func(ctx ActorContext) MessageHandler {
					ref := ctx.Spawn(func(ctx ActorContext) MessageHandler {
						return func(msg interface{}) MessageHandler { panic("crash") }
					})
					ctx.WatchWith(ref, "crashed")
					ref.Tell("go")
					return func(msg interface{}) MessageHandler {
						got = msg
						return Stopped()
					}
				}
				system := startTest(parent)
				system.Wait()
				Expect(got).To(Equal("crashed"))
			})

			It("notifies immediately when the actor already stopped", func() {
				var got []interface{}
				parent := func(ctx ActorContext) MessageHandler {
					ref := ctx.Spawn(func(ctx ActorContext) MessageHandler {
						return Stopped()
					})
					ctx.WatchWith(ref, "first")
					ctx.Self().Tell("watch again")
					return func(msg interface{}) MessageHandler {
						got = append(got, msg)
						switch msg {
						case "first":
							ctx.WatchWith(ref, "second")
						case "second":
							return Stopped()
						}
						return Same()
					}
				}
				system := startTest(parent)
				system.Wait()
				Expect(got).To(ContainElement("second"))
			})
		})

		Context("Schedule", func() {
			It("delivers the message after the delay", func() {
				var elapsed time.Duration
				start := time.Now()
				system := startTest(func(ctx ActorContext) MessageHandler {
					ctx.Schedule(20*time.Millisecond, ctx.Self(), "tick")
					return func(msg interface{}) MessageHandler {
						if msg == "tick" {
							elapsed = time.Since(start)
							return Stopped()
						}
						return Unhandled()
					}
				})
				system.Wait()
				Expect(elapsed).To(BeNumerically(">=", 20*time.Millisecond))
			})

			It("is cancelled when the actor stops", func() {
				inbox := NewInbox(1)
				system := startTest(func(ctx ActorContext) MessageHandler {
					ctx.Schedule(20*time.Millisecond, inbox, "late")
					return Stopped()
				})
				system.Wait()
				Consistently(inbox.C(), 60*time.Millisecond).ShouldNot(Receive())
			})
		})
	})

	Context("Children", func() {
		It("children are stopped when parent is", func() {
			childStopped := make(chan struct{})
			child := func(ctx ActorContext) MessageHandler {
				ctx.DeliverSignals(true)
				return func(msg interface{}) MessageHandler {
					if _, ok := msg.(PostStopSignal); ok {
						close(childStopped)
					}
					return nil
				}
			}

			parent := func(ctx ActorContext) MessageHandler {
				ctx.Spawn(child)
				return Stopped()
			}

			system := startTest(parent)
			system.Wait()
			Expect(childStopped).To(BeClosed())
		})
	})

	Context("Dead letters", func() {
		It("drops messages sent to a stopped actor", func() {
			recorder := &recordingMetrics{}
			system := startTest(func(ctx ActorContext) MessageHandler {
				return Stopped()
			}, WithMetrics(recorder))
			system.Wait()

			system.Root().Tell("too late")
			Expect(recorder.deadLetters()).To(Equal(1))
		})
	})
})

func Countdown(start int) SetupHandler {
	count := start
	return func(ctx ActorContext) MessageHandler {
		return func(msg interface{}) MessageHandler {
			count = count - 1
			if count == 0 {
				return Stopped()
			}
			return nil
		}
	}
}

type recordingMetrics struct {
	mu       sync.Mutex
	spawned  int
	stopped  int
	crashes  int
	dead     int
	outcomes map[string]int
}

func (r *recordingMetrics) ActorSpawned() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spawned++
}

func (r *recordingMetrics) ActorStopped(crashed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
	if crashed {
		r.crashes++
	}
}

func (r *recordingMetrics) MessageDuration() metrics.Timer { return metrics.NopTimer() }

func (r *recordingMetrics) MessageProcessed(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[string]int)
	}
	r.outcomes[outcome]++
}

func (r *recordingMetrics) DeadLetter() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dead++
}

func (r *recordingMetrics) outcome(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcomes[name]
}

func (r *recordingMetrics) crashed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.crashes
}

func (r *recordingMetrics) deadLetters() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dead
}
