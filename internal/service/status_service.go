// Package service orchestrates the live status read/write path across the
// store, the cache tier and the push-subscription registry.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/venue-live-status/internal/cache"
	"github.com/iliyamo/venue-live-status/internal/model"
	"github.com/iliyamo/venue-live-status/internal/repository"
)

// StatusStore is the subset of the status repository used here.
type StatusStore interface {
	Get(ctx context.Context, venueID uint64) (*model.VenueStatus, error)
	GetMany(ctx context.Context, venueIDs []uint64) ([]*model.VenueStatus, error)
	Upsert(ctx context.Context, status *model.VenueStatus) error
}

// VenueResolver checks that a venue exists before a status is written.
type VenueResolver interface {
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
}

// Broadcaster delivers events to this instance's open subscriptions.
type Broadcaster interface {
	Publish(venueID uint64, payload any)
}

// StatusService implements the cache-aside read path and the
// persist/publish write path for venue live status. Store failures
// propagate to the caller; cache failures degrade silently to the store.
type StatusService struct {
	store    StatusStore
	venues   VenueResolver
	cache    cache.StatusCache
	registry Broadcaster
	now      func() time.Time
}

// NewStatusService wires the service. Pass cache.Noop{} to run without a
// cache tier; reads and writes behave identically, only always against
// the store.
func NewStatusService(store StatusStore, venues VenueResolver, c cache.StatusCache, registry Broadcaster) *StatusService {
	return &StatusService{store: store, venues: venues, cache: c, registry: registry, now: time.Now}
}

// Read returns the current view for a venue. It never fails on absence:
// a venue without a status record yields the UNKNOWN sentinel, which is
// computed fresh and never cached. A cache entry that cannot be converted
// is treated as a miss, never surfaced as an error.
func (s *StatusService) Read(ctx context.Context, venueID uint64) (model.StatusView, error) {
	now := s.now().UTC()
	if entry, ok := s.cache.Get(ctx, venueID); ok {
		if view, ok := entry.View(now); ok {
			return view, nil
		}
	}
	status, err := s.store.Get(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrStatusNotFound) {
			return model.UnknownStatusView(), nil
		}
		return model.StatusView{}, err
	}
	s.cache.Put(ctx, status)
	return model.NewStatusView(status, now), nil
}

// ReadMany returns views for a batch of venue IDs: one batch cache
// lookup, one batch store read for the misses, cache backfill for every
// store hit. Venues absent from both tiers yield the UNKNOWN sentinel.
func (s *StatusService) ReadMany(ctx context.Context, venueIDs []uint64) (map[uint64]model.StatusView, error) {
	now := s.now().UTC()
	views := make(map[uint64]model.StatusView, len(venueIDs))

	cached := s.cache.GetMany(ctx, venueIDs)
	var missing []uint64
	for _, id := range venueIDs {
		if entry, ok := cached[id]; ok {
			if view, ok := entry.View(now); ok {
				views[id] = view
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		stored, err := s.store.GetMany(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, status := range stored {
			s.cache.Put(ctx, status)
			views[status.VenueID] = model.NewStatusView(status, now)
		}
	}

	for _, id := range venueIDs {
		if _, ok := views[id]; !ok {
			views[id] = model.UnknownStatusView()
		}
	}
	return views, nil
}

// GetOrFail returns the raw stored record, bypassing the cache. It fails
// with repository.ErrStatusNotFound on absence; the detail endpoint maps
// that to 404 and reports the stored-field expired flag.
func (s *StatusService) GetOrFail(ctx context.Context, venueID uint64) (*model.VenueStatus, error) {
	return s.store.Get(ctx, venueID)
}

// Upsert persists a new status for the venue, writes through to the
// cache and publishes the update. When cross-instance dispatch is
// unavailable (disabled cache, or an active cache whose publish failed)
// the view is delivered to the local registry instead, so at least local
// subscribers are notified. Concurrent upserts are last-write-wins.
func (s *StatusService) Upsert(ctx context.Context, venueID uint64, crowdLevel, party2, party3, party4 string) (*model.VenueStatus, error) {
	if _, err := s.venues.GetByID(ctx, venueID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	status := &model.VenueStatus{
		VenueID:    venueID,
		CrowdLevel: crowdLevel,
		Party2:     party2,
		Party3:     party3,
		Party4:     party4,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(model.StatusTTL),
	}
	if err := s.store.Upsert(ctx, status); err != nil {
		return nil, err
	}

	s.cache.Put(ctx, status)

	event := model.StatusEvent{VenueID: venueID, Status: model.NewStatusView(status, now)}
	if !s.cache.Publish(ctx, event) {
		s.registry.Publish(venueID, event)
	}
	return status, nil
}
