package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/venue-live-status/internal/model"
)

type fakeSearcher struct {
	venues []*model.Venue
	err    error
	boxes  int
}

func (f *fakeSearcher) ListInBoundingBox(_ context.Context, minLat, maxLat, minLng, maxLng float64) ([]*model.Venue, error) {
	f.boxes++
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Venue
	for _, v := range f.venues {
		if v.Latitude >= minLat && v.Latitude <= maxLat && v.Longitude >= minLng && v.Longitude <= maxLng {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeStatusReader struct {
	views map[uint64]model.StatusView
	asked []uint64
}

func (f *fakeStatusReader) ReadMany(_ context.Context, venueIDs []uint64) (map[uint64]model.StatusView, error) {
	f.asked = venueIDs
	out := make(map[uint64]model.StatusView)
	for _, id := range venueIDs {
		if v, ok := f.views[id]; ok {
			out[id] = v
		} else {
			out[id] = model.UnknownStatusView()
		}
	}
	return out, nil
}

func TestFindNearbyValidation(t *testing.T) {
	svc := NewNearbyService(&fakeSearcher{}, &fakeStatusReader{})
	ctx := context.Background()

	cases := []struct {
		name   string
		lat    float64
		lng    float64
		radius float64
		limit  int
		want   error
	}{
		{"lat too high", 91, 0, 1000, 10, ErrInvalidCoordinates},
		{"lng too low", 0, -181, 1000, 10, ErrInvalidCoordinates},
		{"zero radius", 52, 13, 0, 10, ErrInvalidRadius},
		{"radius over cap", 52, 13, 10_001, 10, ErrInvalidRadius},
		{"zero limit", 52, 13, 1000, 0, ErrInvalidLimit},
		{"limit over cap", 52, 13, 1000, 201, ErrInvalidLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.FindNearby(ctx, tc.lat, tc.lng, tc.radius, tc.limit)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestFindNearbyOrdersByDistanceAndTruncates(t *testing.T) {
	// Around Berlin Mitte; ~111m per 0.001 degree of latitude.
	searcher := &fakeSearcher{venues: []*model.Venue{
		{ID: 1, Name: "far", Latitude: 52.528, Longitude: 13.401},
		{ID: 2, Name: "near", Latitude: 52.5205, Longitude: 13.401},
		{ID: 3, Name: "mid", Latitude: 52.524, Longitude: 13.401},
		{ID: 4, Name: "other city", Latitude: 48.137, Longitude: 11.575},
	}}
	reader := &fakeStatusReader{}
	svc := NewNearbyService(searcher, reader)

	items, err := svc.FindNearby(context.Background(), 52.52, 13.401, 1000, 2)
	if err != nil {
		t.Fatalf("FindNearby: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (limit)", len(items))
	}
	if items[0].ID != 2 || items[1].ID != 3 {
		t.Fatalf("order = [%d %d], want [2 3]", items[0].ID, items[1].ID)
	}
	// The status read covers exactly the returned venues.
	if len(reader.asked) != 2 {
		t.Fatalf("status read asked for %v", reader.asked)
	}
}

func TestFindNearbyZipsStatusViews(t *testing.T) {
	searcher := &fakeSearcher{venues: []*model.Venue{
		{ID: 1, Name: "with status", Latitude: 52.52, Longitude: 13.401},
		{ID: 2, Name: "without status", Latitude: 52.521, Longitude: 13.401},
	}}
	reader := &fakeStatusReader{views: map[uint64]model.StatusView{
		1: {CrowdLevel: model.CrowdBusy, AgeMinutes: 3},
	}}
	svc := NewNearbyService(searcher, reader)

	items, err := svc.FindNearby(context.Background(), 52.52, 13.401, 1000, 10)
	if err != nil {
		t.Fatalf("FindNearby: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Status.CrowdLevel != model.CrowdBusy {
		t.Fatalf("item 0 status = %+v", items[0].Status)
	}
	if items[1].Status.CrowdLevel != model.LabelUnknown || items[1].Status.AgeMinutes != -1 {
		t.Fatalf("item 1 must carry the UNKNOWN sentinel, got %+v", items[1].Status)
	}
}

func TestFindNearbySearcherErrorPropagates(t *testing.T) {
	boom := errors.New("db gone")
	svc := NewNearbyService(&fakeSearcher{err: boom}, &fakeStatusReader{})

	if _, err := svc.FindNearby(context.Background(), 52.52, 13.401, 1000, 10); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Berlin to Munich is roughly 504 km.
	d := haversineMeters(52.52, 13.405, 48.137, 11.575)
	if d < 500_000 || d > 510_000 {
		t.Fatalf("distance = %.0f m, want ~504 km", d)
	}
}
