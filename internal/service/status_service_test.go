package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/venue-live-status/internal/cache"
	"github.com/iliyamo/venue-live-status/internal/model"
	"github.com/iliyamo/venue-live-status/internal/repository"
)

type fakeStore struct {
	records  map[uint64]*model.VenueStatus
	err      error
	getCalls int
	upserts  []*model.VenueStatus
}

func (f *fakeStore) Get(_ context.Context, venueID uint64) (*model.VenueStatus, error) {
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.records[venueID]
	if !ok {
		return nil, repository.ErrStatusNotFound
	}
	return s, nil
}

func (f *fakeStore) GetMany(_ context.Context, venueIDs []uint64) ([]*model.VenueStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.VenueStatus
	for _, id := range venueIDs {
		if s, ok := f.records[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) Upsert(_ context.Context, s *model.VenueStatus) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, s)
	if f.records == nil {
		f.records = make(map[uint64]*model.VenueStatus)
	}
	f.records[s.VenueID] = s
	return nil
}

type fakeResolver struct {
	venues map[uint64]*model.Venue
}

func (f *fakeResolver) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return nil, repository.ErrVenueNotFound
	}
	return v, nil
}

type fakeCache struct {
	entries   map[uint64]cache.Entry
	puts      []*model.VenueStatus
	published []model.StatusEvent
	publishOK bool
}

func (f *fakeCache) Get(_ context.Context, venueID uint64) (cache.Entry, bool) {
	e, ok := f.entries[venueID]
	return e, ok
}

func (f *fakeCache) GetMany(_ context.Context, venueIDs []uint64) map[uint64]cache.Entry {
	out := make(map[uint64]cache.Entry)
	for _, id := range venueIDs {
		if e, ok := f.entries[id]; ok {
			out[id] = e
		}
	}
	return out
}

func (f *fakeCache) Put(_ context.Context, s *model.VenueStatus) {
	f.puts = append(f.puts, s)
	if f.entries == nil {
		f.entries = make(map[uint64]cache.Entry)
	}
	f.entries[s.VenueID] = cache.NewEntry(s)
}

func (f *fakeCache) Publish(_ context.Context, ev model.StatusEvent) bool {
	f.published = append(f.published, ev)
	return f.publishOK
}

type fakeBroadcaster struct {
	events []model.StatusEvent
}

func (f *fakeBroadcaster) Publish(_ uint64, payload any) {
	if ev, ok := payload.(model.StatusEvent); ok {
		f.events = append(f.events, ev)
	}
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore, c *fakeCache, b *fakeBroadcaster) *StatusService {
	resolver := &fakeResolver{venues: map[uint64]*model.Venue{
		1: {ID: 1, OwnerID: 10, Name: "Cafe One"},
	}}
	svc := NewStatusService(store, resolver, c, b)
	svc.now = func() time.Time { return testNow }
	return svc
}

func record(venueID uint64, age time.Duration) *model.VenueStatus {
	return &model.VenueStatus{
		VenueID:    venueID,
		CrowdLevel: model.CrowdNormal,
		Party2:     model.AvailabilityYes,
		Party3:     model.AvailabilityYes,
		Party4:     model.AvailabilityMaybe,
		UpdatedAt:  testNow.Add(-age),
		ExpiresAt:  testNow.Add(model.StatusTTL - age),
	}
}

func TestReadUnknownIsNeverCached(t *testing.T) {
	store := &fakeStore{}
	c := &fakeCache{}
	svc := newTestService(store, c, &fakeBroadcaster{})

	view, err := svc.Read(context.Background(), 99)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if view.CrowdLevel != model.LabelUnknown || view.AgeMinutes != -1 || !view.Stale {
		t.Fatalf("want UNKNOWN sentinel, got %+v", view)
	}
	if len(c.puts) != 0 {
		t.Fatal("sentinel must not be written to the cache")
	}
}

func TestReadStoreHitBackfillsCache(t *testing.T) {
	store := &fakeStore{records: map[uint64]*model.VenueStatus{1: record(1, 5*time.Minute)}}
	c := &fakeCache{}
	svc := newTestService(store, c, &fakeBroadcaster{})

	view, err := svc.Read(context.Background(), 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if view.CrowdLevel != model.CrowdNormal || view.AgeMinutes != 5 || view.Stale {
		t.Fatalf("unexpected view %+v", view)
	}
	if len(c.puts) != 1 || c.puts[0].VenueID != 1 {
		t.Fatalf("cache backfill missing: %+v", c.puts)
	}
}

func TestReadCacheHitSkipsStore(t *testing.T) {
	store := &fakeStore{records: map[uint64]*model.VenueStatus{1: record(1, 5*time.Minute)}}
	c := &fakeCache{entries: map[uint64]cache.Entry{1: cache.NewEntry(record(1, 5*time.Minute))}}
	svc := newTestService(store, c, &fakeBroadcaster{})

	if _, err := svc.Read(context.Background(), 1); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if store.getCalls != 0 {
		t.Fatalf("store queried %d times on a cache hit", store.getCalls)
	}
}

func TestReadCorruptEntryFallsBackToStore(t *testing.T) {
	store := &fakeStore{records: map[uint64]*model.VenueStatus{1: record(1, 5*time.Minute)}}
	c := &fakeCache{entries: map[uint64]cache.Entry{
		1: {VenueID: 1, CrowdLevel: model.CrowdBusy, UpdatedAt: "garbage", ExpiresAt: "garbage"},
	}}
	svc := newTestService(store, c, &fakeBroadcaster{})

	view, err := svc.Read(context.Background(), 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if store.getCalls != 1 {
		t.Fatal("corrupt entry must fall through to the store")
	}
	if view.CrowdLevel != model.CrowdNormal {
		t.Fatalf("view served from corrupt entry: %+v", view)
	}
}

func TestReadStoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newTestService(&fakeStore{err: boom}, &fakeCache{}, &fakeBroadcaster{})

	if _, err := svc.Read(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestReadManyMixedTiers(t *testing.T) {
	// venue 1 cached, venue 2 only in the store, venue 3 absent everywhere.
	store := &fakeStore{records: map[uint64]*model.VenueStatus{2: record(2, 40*time.Minute)}}
	c := &fakeCache{entries: map[uint64]cache.Entry{1: cache.NewEntry(record(1, 5*time.Minute))}}
	svc := newTestService(store, c, &fakeBroadcaster{})

	views, err := svc.ReadMany(context.Background(), []uint64{1, 2, 3})
	if err != nil {
		t.Fatalf("ReadMany: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("got %d views, want 3", len(views))
	}
	if views[1].AgeMinutes != 5 || views[1].Stale {
		t.Fatalf("cached venue: %+v", views[1])
	}
	if views[2].AgeMinutes != 40 || !views[2].Stale {
		t.Fatalf("stored venue: %+v", views[2])
	}
	if views[3].CrowdLevel != model.LabelUnknown || views[3].AgeMinutes != -1 {
		t.Fatalf("absent venue: %+v", views[3])
	}
	// Only the store hit is backfilled.
	if len(c.puts) != 1 || c.puts[0].VenueID != 2 {
		t.Fatalf("backfill puts = %+v", c.puts)
	}
}

func TestUpsertPersistsCachesAndPublishes(t *testing.T) {
	store := &fakeStore{}
	c := &fakeCache{publishOK: true}
	b := &fakeBroadcaster{}
	svc := newTestService(store, c, b)

	status, err := svc.Upsert(context.Background(), 1,
		model.CrowdFull, model.AvailabilityNo, model.AvailabilityNo, model.AvailabilityNo)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !status.UpdatedAt.Equal(testNow) || !status.ExpiresAt.Equal(testNow.Add(model.StatusTTL)) {
		t.Fatalf("timestamps: %+v", status)
	}
	if len(store.upserts) != 1 {
		t.Fatal("store upsert missing")
	}
	if len(c.puts) != 1 {
		t.Fatal("cache write-through missing")
	}
	if len(c.published) != 1 || c.published[0].VenueID != 1 {
		t.Fatalf("published = %+v", c.published)
	}
	// Cross-instance dispatch succeeded, local fallback must stay quiet.
	if len(b.events) != 0 {
		t.Fatalf("local registry received %+v", b.events)
	}
}

func TestUpsertFallsBackToLocalFanOut(t *testing.T) {
	c := &fakeCache{publishOK: false}
	b := &fakeBroadcaster{}
	svc := newTestService(&fakeStore{}, c, b)

	if _, err := svc.Upsert(context.Background(), 1,
		model.CrowdRelaxed, model.AvailabilityYes, model.AvailabilityYes, model.AvailabilityYes); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(b.events) != 1 || b.events[0].VenueID != 1 {
		t.Fatalf("local fan-out = %+v", b.events)
	}
	if b.events[0].Status.CrowdLevel != model.CrowdRelaxed {
		t.Fatalf("event view = %+v", b.events[0].Status)
	}
}

func TestUpsertUnknownVenueFails(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeCache{}, &fakeBroadcaster{})

	_, err := svc.Upsert(context.Background(), 404,
		model.CrowdNormal, model.AvailabilityYes, model.AvailabilityYes, model.AvailabilityYes)
	if !errors.Is(err, repository.ErrVenueNotFound) {
		t.Fatalf("err = %v, want ErrVenueNotFound", err)
	}
	if len(store.upserts) != 0 {
		t.Fatal("nothing must be written for an unknown venue")
	}
}

func TestDisabledCacheChangesNothingButCaching(t *testing.T) {
	resolver := &fakeResolver{venues: map[uint64]*model.Venue{1: {ID: 1, OwnerID: 10}}}
	store := &fakeStore{records: map[uint64]*model.VenueStatus{1: record(1, 5*time.Minute)}}
	b := &fakeBroadcaster{}
	svc := NewStatusService(store, resolver, cache.Noop{}, b)
	svc.now = func() time.Time { return testNow }

	// Every read goes to the store and yields the same view.
	first, err := svc.Read(context.Background(), 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	second, err := svc.Read(context.Background(), 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if first.CrowdLevel != second.CrowdLevel || first.AgeMinutes != second.AgeMinutes {
		t.Fatalf("repeated reads diverged: %+v vs %+v", first, second)
	}
	if store.getCalls != 2 {
		t.Fatalf("store hit %d times, want 2", store.getCalls)
	}

	// Absence still yields the sentinel.
	view, err := svc.Read(context.Background(), 99)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if view.CrowdLevel != model.LabelUnknown || view.AgeMinutes != -1 {
		t.Fatalf("want UNKNOWN sentinel, got %+v", view)
	}

	// Upsert persists and falls back to local fan-out.
	if _, err := svc.Upsert(context.Background(), 1,
		model.CrowdBusy, model.AvailabilityNo, model.AvailabilityNo, model.AvailabilityNo); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(store.upserts) != 1 {
		t.Fatal("store upsert missing")
	}
	if len(b.events) != 1 || b.events[0].Status.CrowdLevel != model.CrowdBusy {
		t.Fatalf("local fan-out = %+v", b.events)
	}
}

func TestGetOrFailBypassesCache(t *testing.T) {
	store := &fakeStore{}
	c := &fakeCache{entries: map[uint64]cache.Entry{1: cache.NewEntry(record(1, time.Minute))}}
	svc := newTestService(store, c, &fakeBroadcaster{})

	if _, err := svc.GetOrFail(context.Background(), 1); !errors.Is(err, repository.ErrStatusNotFound) {
		t.Fatalf("err = %v, want ErrStatusNotFound", err)
	}
	if store.getCalls != 1 {
		t.Fatal("detail read must hit the store")
	}
}
