// Package events fans AgentEvents out to independent subscribers.
package events

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/slogger"
)

// DefaultRetain is the number of recent events kept for late subscribers.
const DefaultRetain = 100

// Publisher receives events. Implementations must be non-blocking and must
// not panic.
type Publisher interface {
	Publish(ev model.AgentEvent)
}

// Sink is one subscriber of the broadcast. Deliver must not block and must
// not call back into the Broker.
type Sink interface {
	Deliver(ev model.AgentEvent) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev model.AgentEvent) error

// Deliver calls f.
func (f SinkFunc) Deliver(ev model.AgentEvent) error { return f(ev) }

// Noop is a Publisher that drops every event.
type Noop struct{}

// Publish drops ev.
func (Noop) Publish(model.AgentEvent) {}

// Options configures a Broker.
type Options struct {
	// Retain is the size of the replay tail. Zero uses DefaultRetain;
	// negative disables retention.
	Retain int
	// OnDeliveryError is called for every sink failure (optional).
	OnDeliveryError func(ev model.AgentEvent, err error)
	// Logger receives delivery failures. Nil discards.
	Logger *slog.Logger
}

type subscription struct {
	id   uint64
	sink Sink
}

// Broker is a publish/subscribe list of independent sinks with a short
// retained tail. A failing or panicking sink does not affect delivery to
// the others.
type Broker struct {
	mu     sync.Mutex
	subs   []subscription
	nextID uint64
	tail   []model.AgentEvent
	retain int
	onErr  func(model.AgentEvent, error)
	logger *slog.Logger
}

// NewBroker creates a Broker.
func NewBroker(opts Options) *Broker {
	retain := opts.Retain
	if retain == 0 {
		retain = DefaultRetain
	}
	if retain < 0 {
		retain = 0
	}
	return &Broker{
		retain: retain,
		onErr:  opts.OnDeliveryError,
		logger: slogger.OrDiscard(opts.Logger),
	}
}

// Publish records ev in the tail and delivers it to every subscriber in
// subscription order. Events published by one goroutine reach each sink in
// publication order.
func (b *Broker) Publish(ev model.AgentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.retain > 0 {
		if len(b.tail) == b.retain {
			copy(b.tail, b.tail[1:])
			b.tail = b.tail[:len(b.tail)-1]
		}
		b.tail = append(b.tail, ev)
	}

	for _, s := range b.subs {
		b.deliver(s, ev)
	}
}

// Subscribe adds sink. With replay, the retained tail is delivered to the
// sink before any newer event. The returned function removes the
// subscription and is safe to call more than once.
func (b *Broker) Subscribe(sink Sink, replay bool) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscription{id: b.nextID, sink: sink}
	if replay {
		for _, ev := range b.tail {
			b.deliver(sub, ev)
		}
	}
	b.subs = append(b.subs, sub)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Recent returns a copy of the retained tail, oldest first.
func (b *Broker) Recent() []model.AgentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.AgentEvent, len(b.tail))
	copy(out, b.tail)
	return out
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// deliver calls the sink, converting a panic into an error.
// Callers hold b.mu.
func (b *Broker) deliver(s subscription, ev model.AgentEvent) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("sink panicked: %v", r)
			}
		}()
		return s.sink.Deliver(ev)
	}()
	if err == nil {
		return
	}
	b.logger.Debug("event delivery failed", "subscriber", s.id, "type", ev.Type, "error", err)
	if b.onErr != nil {
		b.onErr(ev, err)
	}
}

// Memory is a Publisher and Sink that stores events in memory for tests.
type Memory struct {
	mu     sync.Mutex
	events []model.AgentEvent
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory { return &Memory{} }

// Publish stores ev.
func (m *Memory) Publish(ev model.AgentEvent) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
}

// Deliver stores ev.
func (m *Memory) Deliver(ev model.AgentEvent) error {
	m.Publish(ev)
	return nil
}

// Events returns a copy of the stored events.
func (m *Memory) Events() []model.AgentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.AgentEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the stored event types for the given instance, or for all
// instances when id is empty.
func (m *Memory) Types(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, ev := range m.events {
		if id == "" || ev.InstanceID == id {
			out = append(out, ev.Type)
		}
	}
	return out
}
