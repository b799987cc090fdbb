package stream

import (
	"sync"
	"time"
)

// Event is one message queued for delivery to an open push connection.
type Event struct {
	Name string
	Data any
}

// sendBuffer bounds how far a subscriber may fall behind before it is
// treated as dead. Sends never block: a full buffer fails the send and
// the registry removes the subscription.
const sendBuffer = 16

// Subscription is one open push connection. It is exclusively owned by
// the connection handler draining Events; the registry only holds
// non-owning references in its venue index. A subscription is removed
// from the registry on normal completion, idle timeout, a failed send,
// or an explicit Close.
type Subscription struct {
	registry *Registry
	venueIDs []uint64
	events   chan Event
	done     chan struct{}
	idle     *time.Timer
	once     sync.Once
}

// Events is the stream of queued events for this connection.
func (s *Subscription) Events() <-chan Event { return s.events }

// Done is closed once the subscription has been de-registered. Handlers
// select on it to terminate their write loop deterministically.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close de-registers the subscription from every associated venue ID.
// It is safe to call multiple times and from any goroutine.
func (s *Subscription) Close() { s.registry.remove(s) }

// send queues an event without blocking. It reports false when the
// subscriber is already closed or too slow to keep up.
func (s *Subscription) send(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}
