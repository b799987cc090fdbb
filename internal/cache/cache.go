// Package cache implements the status cache tier in front of the status
// store, plus the cross-instance update channel. Two implementations sit
// behind one contract: a disabled no-op variant and a Redis-backed one,
// selected at startup by configuration. Cache failures are never allowed
// to fail a caller request; every backend error degrades to a miss.
package cache

import (
	"context"

	"github.com/iliyamo/venue-live-status/internal/model"
)

// StatusCache fronts the status store with a shared TTL-expiring tier and
// carries status events across server instances.
//
// Publish returns whether cross-instance delivery was actually dispatched;
// false tells the caller to fall back to local-only fan-out.
type StatusCache interface {
	Get(ctx context.Context, venueID uint64) (Entry, bool)
	GetMany(ctx context.Context, venueIDs []uint64) map[uint64]Entry
	Put(ctx context.Context, status *model.VenueStatus)
	Publish(ctx context.Context, event model.StatusEvent) bool
}

// Noop is the disabled cache variant: every read misses, writes do
// nothing and Publish reports that no cross-instance delivery happened.
type Noop struct{}

func (Noop) Get(context.Context, uint64) (Entry, bool)          { return Entry{}, false }
func (Noop) GetMany(context.Context, []uint64) map[uint64]Entry { return nil }
func (Noop) Put(context.Context, *model.VenueStatus)            {}
func (Noop) Publish(context.Context, model.StatusEvent) bool    { return false }
