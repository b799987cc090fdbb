// Package stream holds the per-instance registry of open push
// connections. It is the fan-out target for both local status writes and
// events forwarded from the cross-instance update channel.
package stream

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// heartbeatInterval is how often every open subscription receives a
	// no-op ping so intermediary proxies keep the connection alive.
	heartbeatInterval = 25 * time.Second

	// idleTimeout closes subscriptions that have been open this long.
	// Clients are expected to reconnect; there is no replay on reconnect.
	idleTimeout = 30 * time.Minute
)

// Registry indexes open subscriptions by venue ID. It is the only
// long-lived shared mutable state in the process and is safe for
// concurrent subscribe, remove, publish and heartbeat. The lock is never
// held across a send: publish snapshots the subscriber set first, and the
// sends themselves are non-blocking, so one stalled connection cannot
// delay delivery to others or block new registrations.
type Registry struct {
	mu   sync.RWMutex
	subs map[uint64]map[*Subscription]struct{}
}

// NewRegistry returns an empty registry ready for use.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[uint64]map[*Subscription]struct{})}
}

// Subscribe opens a subscription registered under every listed venue ID
// and queues the initial "connected" acknowledgement. The subscription
// de-registers itself after the idle timeout unless closed earlier.
func (r *Registry) Subscribe(venueIDs []uint64) *Subscription {
	sub := &Subscription{
		registry: r,
		venueIDs: venueIDs,
		events:   make(chan Event, sendBuffer),
		done:     make(chan struct{}),
	}
	sub.idle = time.AfterFunc(idleTimeout, sub.Close)

	r.mu.Lock()
	for _, id := range venueIDs {
		set := r.subs[id]
		if set == nil {
			set = make(map[*Subscription]struct{})
			r.subs[id] = set
		}
		set[sub] = struct{}{}
	}
	r.mu.Unlock()

	sub.send(Event{Name: "connected", Data: "ok"})
	return sub
}

// Publish queues a "status" event for every subscription currently
// registered for the venue. A failed send removes that subscription from
// all of its venue associations; delivery to the remaining subscribers
// continues.
func (r *Registry) Publish(venueID uint64, payload any) {
	for _, sub := range r.snapshot(venueID) {
		if !sub.send(Event{Name: "status", Data: payload}) {
			log.Printf("sse: removing dead subscriber: venue_id=%d", venueID)
			sub.Close()
		}
	}
}

// Count returns how many subscriptions are registered for a venue.
func (r *Registry) Count(venueID uint64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[venueID])
}

// StartHeartbeat launches the ping loop. It stops when ctx is done.
func (r *Registry) StartHeartbeat(ctx context.Context) {
	go func() {
		t := time.NewTicker(heartbeatInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.ping()
			}
		}
	}()
}

// ping sends a no-op event to every open subscription. A failed ping
// takes the same removal path as a failed publish.
func (r *Registry) ping() {
	r.mu.RLock()
	seen := make(map[*Subscription]struct{})
	for _, set := range r.subs {
		for sub := range set {
			seen[sub] = struct{}{}
		}
	}
	r.mu.RUnlock()

	for sub := range seen {
		if !sub.send(Event{Name: "ping", Data: "ok"}) {
			sub.Close()
		}
	}
}

// snapshot copies the subscriber set for a venue so sends happen outside
// the lock.
func (r *Registry) snapshot(venueID uint64) []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.subs[venueID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Subscription, 0, len(set))
	for sub := range set {
		out = append(out, sub)
	}
	return out
}

// remove de-registers a subscription from every venue it was attached to,
// dropping index entries that become empty so transient subscriptions do
// not grow the map without bound.
func (r *Registry) remove(s *Subscription) {
	r.mu.Lock()
	for _, id := range s.venueIDs {
		set := r.subs[id]
		if set == nil {
			continue
		}
		delete(set, s)
		if len(set) == 0 {
			delete(r.subs, id)
		}
	}
	r.mu.Unlock()

	s.once.Do(func() {
		s.idle.Stop()
		close(s.done)
	})
}
