// Package chat implements the support chat: a live channel to the chat
// server with a canned-response fallback whenever the channel is down.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bloodlink/internal/logging"
)

const (
	DefaultFallbackDelay  = 500 * time.Millisecond
	DefaultReconnectDelay = 2 * time.Second
)

// Status is the state of the live channel.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of the chat log.
type Message struct {
	Text   string
	Sender Sender
}

// EventKind names a channel lifecycle or data event.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventError
	EventMessage
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	case EventMessage:
		return "message"
	}
	return "unknown"
}

// Event is delivered by a channel. Reply is set for EventMessage, Err for
// EventError and optionally EventDisconnected.
type Event struct {
	Kind  EventKind
	Reply string
	Err   error
}

// Channel is a live chat handle.
type Channel interface {
	// Emit sends a user message.
	Emit(ctx context.Context, text string) error
	// Connected reports whether the handshake completed and the link is up.
	Connected() bool
	Close() error
}

// Connector opens a channel without blocking. The handshake outcome and
// everything after it arrive through sink.
type Connector func(ctx context.Context, sink func(Event)) Channel

// Snapshot is a copy of the chat state.
type Snapshot struct {
	Status           Status
	Messages         []Message
	Composing        bool
	ReconnectPending bool
}

// Controller drives the chat state machine. It is safe for concurrent use.
type Controller struct {
	connect        Connector
	sched          Scheduler
	log            logging.Logger
	fallbackDelay  time.Duration
	reconnectDelay time.Duration
	onChange       func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	status        Status
	messages      []Message
	composing     bool
	channel       Channel
	gen           uint64
	everConnected bool
	reconnect     Timer
	fallbacks     map[uint64]Timer
	nextFallback  uint64
	closed        bool
}

type Option func(*Controller)

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

func WithDelays(fallback, reconnect time.Duration) Option {
	return func(c *Controller) {
		if fallback > 0 {
			c.fallbackDelay = fallback
		}
		if reconnect > 0 {
			c.reconnectDelay = reconnect
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithOnChange registers a callback run after every state change, outside
// the controller lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// NewController builds a disconnected controller. Start opens the channel.
func NewController(connect Connector, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		connect:        connect,
		sched:          realScheduler{},
		log:            logging.NewDiscard(),
		fallbackDelay:  DefaultFallbackDelay,
		reconnectDelay: DefaultReconnectDelay,
		ctx:            ctx,
		cancel:         cancel,
		status:         StatusDisconnected,
		fallbacks:      make(map[uint64]Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start performs the first handshake.
func (c *Controller) Start() {
	c.dial()
}

// Send appends text as a user message and gets it answered, live when the
// channel is up, from the canned replies otherwise. Blank input is ignored.
func (c *Controller) Send(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.messages = append(c.messages, Message{Text: text, Sender: SenderUser})
	c.composing = true

	if c.status == StatusConnected && c.channel != nil && c.channel.Connected() {
		ch := c.channel
		c.mu.Unlock()
		c.changed()

		err := ch.Emit(ctx, text)
		if err == nil {
			return
		}
		c.log.Warn(ctx, "chat emit failed, answering offline", "error", err)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
	}

	c.fallbackLocked(text)
	c.mu.Unlock()
	c.changed()
}

// SendTopic sends the query of a quick-reply topic.
func (c *Controller) SendTopic(ctx context.Context, t Topic) {
	c.Send(ctx, t.Query)
}

// HandleEvent applies an event of the current channel.
func (c *Controller) HandleEvent(ev Event) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	c.dispatch(gen, ev)
}

// Close tears down the channel and cancels every pending timer. The
// controller ignores all input afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	for id, t := range c.fallbacks {
		t.Stop()
		delete(c.fallbacks, id)
	}
	c.composing = false
	ch := c.channel
	c.channel = nil
	c.mu.Unlock()

	c.cancel()
	if ch != nil {
		if err := ch.Close(); err != nil {
			c.log.Debug(c.ctx, "chat channel close", "error", err)
		}
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Messages returns a copy of the log.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

func (c *Controller) Composing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.composing
}

func (c *Controller) ReconnectPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnect != nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Status:           c.status,
		Messages:         append([]Message(nil), c.messages...),
		Composing:        c.composing,
		ReconnectPending: c.reconnect != nil,
	}
}

// fallbackLocked schedules the canned reply and, while offline, a single
// reconnect.
func (c *Controller) fallbackLocked(text string) {
	reply := FallbackReply(text)
	id := c.nextFallback
	c.nextFallback++
	c.fallbacks[id] = c.sched.AfterFunc(c.fallbackDelay, func() { c.deliverFallback(id, reply) })

	if c.status != StatusConnected && c.reconnect == nil {
		c.reconnect = c.sched.AfterFunc(c.reconnectDelay, c.fireReconnect)
	}
}

func (c *Controller) deliverFallback(id uint64, reply string) {
	c.mu.Lock()
	if _, ok := c.fallbacks[id]; !ok || c.closed {
		c.mu.Unlock()
		return
	}
	delete(c.fallbacks, id)
	c.messages = append(c.messages, Message{Text: reply, Sender: SenderBot})
	c.composing = len(c.fallbacks) > 0
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) fireReconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.reconnect = nil
	c.mu.Unlock()

	c.log.Debug(c.ctx, "chat reconnecting")
	c.dial()
}

// dial replaces the current channel with a fresh handshake. Events of the
// replaced channel are ignored from here on.
func (c *Controller) dial() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	old := c.channel
	c.channel = nil
	c.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	ch := c.connect(c.ctx, func(ev Event) { c.dispatch(gen, ev) })

	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		if ch != nil {
			_ = ch.Close()
		}
		return
	}
	c.channel = ch
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) dispatch(gen uint64, ev Event) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}

	switch ev.Kind {
	case EventConnected:
		c.status = StatusConnected
		if !c.everConnected && len(c.messages) == 0 {
			c.messages = append(c.messages, Message{Text: Greeting(), Sender: SenderBot})
		}
		c.everConnected = true
	case EventDisconnected:
		c.status = StatusDisconnected
	case EventError:
		c.status = StatusError
		c.composing = len(c.fallbacks) > 0
		if len(c.messages) == 0 {
			c.messages = append(c.messages, Message{Text: OfflineGreeting, Sender: SenderBot})
		}
	case EventMessage:
		c.messages = append(c.messages, Message{Text: ev.Reply, Sender: SenderBot})
		c.composing = len(c.fallbacks) > 0
	}
	c.mu.Unlock()

	if ev.Err != nil {
		c.log.Debug(c.ctx, "chat channel event", "event", ev.Kind.String(), "error", ev.Err)
	} else {
		c.log.Debug(c.ctx, "chat channel event", "event", ev.Kind.String())
	}
	c.changed()
}

func (c *Controller) changed() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}
