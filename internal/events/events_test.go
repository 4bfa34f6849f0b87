package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/overseer/internal/model"
)

func ev(id, typ string) model.AgentEvent {
	return model.NewEvent(id, typ, model.SeverityInfo, time.Now(), nil)
}

func TestBroker_FanOut(t *testing.T) {
	b := NewBroker(Options{})
	a, c := NewMemory(), NewMemory()
	b.Subscribe(a, false)
	b.Subscribe(c, false)

	b.Publish(ev("i1", model.EventInstanceCreated))
	b.Publish(ev("i1", model.EventStatusChanged))

	assert.Equal(t, []string{model.EventInstanceCreated, model.EventStatusChanged}, a.Types("i1"))
	assert.Equal(t, a.Events(), c.Events())
}

func TestBroker_FailingSinkDoesNotBlockOthers(t *testing.T) {
	var failures []error
	b := NewBroker(Options{OnDeliveryError: func(_ model.AgentEvent, err error) {
		failures = append(failures, err)
	}})

	b.Subscribe(SinkFunc(func(model.AgentEvent) error { return errors.New("closed") }), false)
	b.Subscribe(SinkFunc(func(model.AgentEvent) error { panic("boom") }), false)
	good := NewMemory()
	b.Subscribe(good, false)

	b.Publish(ev("i1", model.EventRestartTriggered))

	assert.Len(t, good.Events(), 1)
	require.Len(t, failures, 2)
	assert.Contains(t, failures[1].Error(), "boom")
}

func TestBroker_ReplayAndRetention(t *testing.T) {
	b := NewBroker(Options{Retain: 2})
	b.Publish(ev("i1", "a"))
	b.Publish(ev("i1", "b"))
	b.Publish(ev("i1", "c"))

	late := NewMemory()
	b.Subscribe(late, true)
	b.Publish(ev("i1", "d"))

	assert.Equal(t, []string{"b", "c", "d"}, late.Types(""))
	assert.Len(t, b.Recent(), 2)

	noReplay := NewMemory()
	b.Subscribe(noReplay, false)
	assert.Empty(t, noReplay.Events())
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker(Options{Retain: -1})
	m := NewMemory()
	unsub := b.Subscribe(m, false)
	assert.Equal(t, 1, b.Subscribers())

	unsub()
	unsub()
	b.Publish(ev("i1", "a"))

	assert.Empty(t, m.Events())
	assert.Zero(t, b.Subscribers())
	assert.Empty(t, b.Recent())
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NotPanics(t, func() { p.Publish(ev("i", "x")) })
}
