// Package tabsync propagates applied changes to other open sessions of the
// same admin and suppresses each session's own echo.
package tabsync

import (
	"errors"
	"sync"

	"adminstyler/model"
)

// ErrClosed is returned when sending on a closed transport.
var ErrClosed = errors.New("transport closed")

// Transport is a same-origin publish/subscribe channel. Some transports
// deliver messages back to their sender; echo suppression is the
// synchronizer's job, not the transport's.
type Transport interface {
	Send(msg model.BroadcastMessage) error
	Receive() <-chan model.BroadcastMessage
	Close() error
}

// Bus is an in-process broadcast channel, the stand-in for the storage
// event fallback when no hub is reachable. Every subscriber, sender
// included, receives every message.
type Bus struct {
	mu   sync.Mutex
	subs []*BusTransport
}

func NewBus() *Bus {
	return &Bus{}
}

// NewTransport subscribes a new endpoint to the bus.
func (b *Bus) NewTransport() *BusTransport {
	t := &BusTransport{
		bus: b,
		ch:  make(chan model.BroadcastMessage, 16),
	}
	b.mu.Lock()
	b.subs = append(b.subs, t)
	b.mu.Unlock()
	return t
}

func (b *Bus) publish(msg model.BroadcastMessage) {
	b.mu.Lock()
	subs := make([]*BusTransport, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, t := range subs {
		select {
		case t.ch <- msg:
		default:
			// Slow subscriber; drop rather than block the sender.
		}
	}
}

func (b *Bus) remove(t *BusTransport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == t {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
}

// BusTransport is one endpoint on a Bus.
type BusTransport struct {
	bus    *Bus
	ch     chan model.BroadcastMessage
	mu     sync.Mutex
	closed bool
}

func (t *BusTransport) Send(msg model.BroadcastMessage) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}
	t.bus.publish(msg)
	return nil
}

func (t *BusTransport) Receive() <-chan model.BroadcastMessage {
	return t.ch
}

func (t *BusTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.bus.remove(t)
	close(t.ch)
	return nil
}
