package tractor

import (
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const systemID = "/"

func Start(root SetupHandler, opts ...Option) ActorSystem {
	system := &actorSystemImpl{options: newOptions(opts)}
	system.start(root)
	return system
}

type actorSystemImpl struct {
	options
	context *localActorContext
	root    *localActorRef
}

func (system *actorSystemImpl) Root() ActorRef {
	return system.root
}

func (system *actorSystemImpl) Wait() {
	system.context.childrenWaitGroup.Wait()
}

func (system *actorSystemImpl) Terminate() {
	system.root.context.mailbox.stop()
}

func (system *actorSystemImpl) start(root SetupHandler) {
	system.context = newContext(system, nil, nil)
	system.root = system.context.spawn(root)
}

type localActorRef struct {
	context *localActorContext
}

func (ref *localActorRef) Tell(msg interface{}) {
	if !ref.context.mailbox.tell(msg) {
		ref.context.system.metrics.DeadLetter()
		ref.context.log.Debug().Type("message", msg).Msg("dead letter")
	}
}

func (ref *localActorRef) String() string {
	return ref.context.id
}

type terminateListener struct {
	ref ActorRef
	msg interface{}
}

// mailbox stops accepting messages as soon as a stop is requested; whatever
// is still queued at that point is dropped.
type mailbox struct {
	messages chan interface{}
	stopping chan struct{}
	once     sync.Once
}

func newMailbox(size int) *mailbox {
	return &mailbox{
		messages: make(chan interface{}, size),
		stopping: make(chan struct{}),
	}
}

func (m *mailbox) tell(msg interface{}) bool {
	select {
	case <-m.stopping:
		return false
	default:
	}
	select {
	case m.messages <- msg:
		return true
	case <-m.stopping:
		return false
	}
}

func (m *mailbox) take() (interface{}, bool) {
	select {
	case <-m.stopping:
		return nil, false
	default:
	}
	select {
	case msg := <-m.messages:
		return msg, true
	case <-m.stopping:
		return nil, false
	}
}

func (m *mailbox) stop() {
	m.once.Do(func() { close(m.stopping) })
}

type localActorContext struct {
	system            *actorSystemImpl
	parent            *localActorContext
	self              *localActorRef
	id                string
	log               zerolog.Logger
	childrenWaitGroup sync.WaitGroup
	deliverSignals    bool
	crashed           bool
	mailbox           *mailbox

	mu          sync.Mutex
	children    []*localActorRef
	listeners   []terminateListener
	timers      map[int]*time.Timer
	nextTimer   int
	terminating bool
	terminated  bool
}

func newContext(system *actorSystemImpl, self *localActorRef, parent *localActorContext) *localActorContext {
	id := systemID
	if self != nil {
		id = gonanoid.Must()
	}
	return &localActorContext{
		system:  system,
		self:    self,
		parent:  parent,
		id:      id,
		log:     system.logger.With().Str("actor", id).Logger(),
		mailbox: newMailbox(system.mailboxSize),
		timers:  make(map[int]*time.Timer),
	}
}

func (ctx *localActorContext) Parent() ActorRef {
	if ctx.parent == nil || ctx.parent.self == nil {
		return nil
	}
	return ctx.parent.self
}

func (ctx *localActorContext) Self() ActorRef {
	return ctx.self
}

func (ctx *localActorContext) Log() *zerolog.Logger {
	return &ctx.log
}

func (ctx *localActorContext) DeliverSignals(value bool) {
	ctx.deliverSignals = value
}

func (ctx *localActorContext) Children() []ActorRef {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	result := make([]ActorRef, len(ctx.children))
	for i, ref := range ctx.children {
		result[i] = ref
	}
	return result
}

func (ctx *localActorContext) Spawn(handler SetupHandler) ActorRef {
	return ctx.spawn(handler)
}

func (ctx *localActorContext) spawn(handler SetupHandler) *localActorRef {
	ref := &localActorRef{}
	childContext := newContext(ctx.system, ref, ctx)
	ref.context = childContext

	ctx.mu.Lock()
	ctx.children = append(ctx.children, ref)
	if ctx.terminating {
		// parent is already shutting its children down
		childContext.mailbox.stop()
	}
	ctx.mu.Unlock()

	ctx.childrenWaitGroup.Add(1)
	ctx.system.metrics.ActorSpawned()
	go func() {
		childContext.mainLoop(handler)
	}()
	return ref
}

func (ctx *localActorContext) Stop(child ActorRef) {
	if ref, ok := child.(*localActorRef); ok {
		ref.context.mailbox.stop()
	}
}

func (ctx *localActorContext) Watch(actor ActorRef) {
	ctx.WatchWith(actor, Terminated{Ref: actor})
}

func (ctx *localActorContext) WatchWith(actor ActorRef, msg interface{}) {
	ref, ok := actor.(*localActorRef)
	if !ok {
		ctx.log.Warn().Type("ref", actor).Msg("cannot watch a non-local actor")
		return
	}
	target := ref.context
	target.mu.Lock()
	if target.terminated {
		target.mu.Unlock()
		ctx.self.Tell(msg)
		return
	}
	target.listeners = append(target.listeners, terminateListener{ref: ctx.self, msg: msg})
	target.mu.Unlock()
}

func (ctx *localActorContext) Schedule(delay time.Duration, target ActorRef, msg interface{}) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.terminated {
		return
	}
	id := ctx.nextTimer
	ctx.nextTimer++
	ctx.timers[id] = time.AfterFunc(delay, func() {
		ctx.mu.Lock()
		delete(ctx.timers, id)
		ctx.mu.Unlock()
		target.Tell(msg)
	})
}

func (ctx *localActorContext) mainLoop(setup SetupHandler) {
	messageHandler := ctx.setup(setup)
	if messageHandler == nil || IsUnhandled(messageHandler) {
		messageHandler = Stopped()
	}

	lastMessageHandler := messageHandler
	if ctx.deliverSignals && !IsStopped(messageHandler) {
		messageHandler = ctx.next(messageHandler, PostInitSignal{})
	}

	for !IsStopped(messageHandler) {
		lastMessageHandler = messageHandler

		msg, ok := ctx.mailbox.take()
		if !ok {
			break
		}
		messageHandler = ctx.next(messageHandler, msg)
	}

	ctx.terminate(lastMessageHandler)
}

func (ctx *localActorContext) next(messageHandler MessageHandler, msg interface{}) MessageHandler {
	newHandler := ctx.deliver(messageHandler, msg)
	switch {
	case newHandler == nil:
		return messageHandler
	case IsUnhandled(newHandler):
		ctx.log.Debug().Type("message", msg).Msg("unhandled message")
		return messageHandler
	}
	return newHandler
}

func (ctx *localActorContext) terminate(lastMessageHandler MessageHandler) {
	ctx.mailbox.stop()
	signals := ctx.deliverSignals && !IsStopped(lastMessageHandler)

	if signals {
		ctx.deliver(lastMessageHandler, PreStopSignal{})
	}

	ctx.mu.Lock()
	ctx.terminating = true
	for _, child := range ctx.children {
		child.context.mailbox.stop()
	}
	ctx.mu.Unlock()
	ctx.childrenWaitGroup.Wait()

	if signals {
		ctx.deliver(lastMessageHandler, PostStopSignal{})
	}

	ctx.mu.Lock()
	ctx.terminated = true
	listeners := ctx.listeners
	ctx.listeners = nil
	for _, timer := range ctx.timers {
		timer.Stop()
	}
	ctx.timers = nil
	ctx.mu.Unlock()

	ctx.parent.removeChild(ctx.self)
	ctx.system.metrics.ActorStopped(ctx.crashed)
	ctx.log.Debug().Bool("crashed", ctx.crashed).Msg("actor stopped")

	for _, listener := range listeners {
		listener.ref.Tell(listener.msg)
	}
	ctx.parent.childrenWaitGroup.Done()
}

func (ctx *localActorContext) removeChild(ref *localActorRef) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	for i, child := range ctx.children {
		if child == ref {
			ctx.children = append(ctx.children[:i], ctx.children[i+1:]...)
			return
		}
	}
}

func (ctx *localActorContext) setup(handler SetupHandler) (messageHandler MessageHandler) {
	defer func() {
		if r := recover(); r != nil {
			ctx.crashed = true
			messageHandler = nil
			crashEvent(&ctx.log, r).Msg("actor setup panic")
		}
	}()
	return handler(ctx)
}

func (ctx *localActorContext) deliver(messageHandler MessageHandler, msg interface{}) (newHandler MessageHandler) {
	defer ctx.system.metrics.MessageDuration().ObserveDuration()

	newHandler = Stopped()
	defer func() {
		if r := recover(); r != nil {
			ctx.crashed = true
			ctx.system.metrics.MessageProcessed(OutcomePanic)
			crashEvent(&ctx.log, r).Type("message", msg).Msg("actor panic")
		}
	}()
	newHandler = messageHandler(msg)
	if IsUnhandled(newHandler) {
		ctx.system.metrics.MessageProcessed(OutcomeUnhandled)
	} else {
		ctx.system.metrics.MessageProcessed(OutcomeHandled)
	}
	return newHandler
}

func crashEvent(log *zerolog.Logger, recovered interface{}) *zerolog.Event {
	if err, ok := recovered.(error); ok {
		return log.Error().Err(err)
	}
	return log.Error().Interface("recovered", recovered)
}
