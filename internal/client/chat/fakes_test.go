package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// manualScheduler fires timers only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock and runs every timer that came due, including
// timers scheduled by the callbacks themselves.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var due []*manualTimer
		for _, t := range s.timers {
			if !t.stopped && !t.fired && t.at <= s.now {
				t.fired = true
				due = append(due, t)
			}
		}
		s.mu.Unlock()
		if len(due) == 0 {
			return
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
		for _, t := range due {
			t.f()
		}
	}
}

// Pending counts timers that are neither stopped nor fired.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeChannel struct {
	mu        sync.Mutex
	connected bool
	emitted   []string
	emitErr   error
	closed    bool
}

func (c *fakeChannel) Emit(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.emitErr != nil {
		return c.emitErr
	}
	c.emitted = append(c.emitted, text)
	return nil
}

func (c *fakeChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected && !c.closed
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) Emitted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.emitted...)
}

// fakeConnector records every dial. onDial decides the handshake outcome
// of dial n (0-based); nil leaves the handshake pending.
type fakeConnector struct {
	mu       sync.Mutex
	sinks    []func(Event)
	channels []*fakeChannel
	onDial   func(n int, ch *fakeChannel, sink func(Event))
}

func (f *fakeConnector) Connect(_ context.Context, sink func(Event)) Channel {
	f.mu.Lock()
	n := len(f.sinks)
	ch := &fakeChannel{}
	f.sinks = append(f.sinks, sink)
	f.channels = append(f.channels, ch)
	onDial := f.onDial
	f.mu.Unlock()

	if onDial != nil {
		onDial(n, ch, sink)
	}
	return ch
}

func (f *fakeConnector) Dials() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sinks)
}

func (f *fakeConnector) Sink(n int) func(Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sinks[n]
}

func (f *fakeConnector) Channel(n int) *fakeChannel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channels[n]
}

var errRefused = errors.New("connection refused")

func failHandshake(_ int, _ *fakeChannel, sink func(Event)) {
	sink(Event{Kind: EventError, Err: errRefused})
}

func succeedHandshake(_ int, ch *fakeChannel, sink func(Event)) {
	ch.mu.Lock()
	ch.connected = true
	ch.mu.Unlock()
	sink(Event{Kind: EventConnected})
}
