package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/iliyamo/venue-live-status/internal/model"
)

// Validation errors for nearby search input; handlers map these to 400.
var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidRadius      = errors.New("radiusMeters must be between 1 and 10000")
	ErrInvalidLimit       = errors.New("limit must be between 1 and 200")
)

// VenueSearcher is the geo prefilter: everything inside a bounding box.
type VenueSearcher interface {
	ListInBoundingBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*model.Venue, error)
}

// StatusReader is the batch status read used to decorate search results.
type StatusReader interface {
	ReadMany(ctx context.Context, venueIDs []uint64) (map[uint64]model.StatusView, error)
}

// NearbyService combines the bounding-box prefilter with precise distance
// ranking and a batch status merge. This is the highest cache-pressure
// path in the system: up to 200 venues resolved per call through one MGET
// and at most one batch store read.
type NearbyService struct {
	venues   VenueSearcher
	statuses StatusReader
}

func NewNearbyService(venues VenueSearcher, statuses StatusReader) *NearbyService {
	return &NearbyService{venues: venues, statuses: statuses}
}

// FindNearby returns up to limit venues within radiusMeters of the given
// point, closest first, each zipped with its current status view.
func (s *NearbyService) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]model.VenueMapItem, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidCoordinates
	}
	if radiusMeters <= 0 || radiusMeters > 10_000 {
		return nil, ErrInvalidRadius
	}
	if limit < 1 || limit > 200 {
		return nil, ErrInvalidLimit
	}

	// One degree of latitude is ~111km; longitude shrinks with cos(lat).
	latDelta := radiusMeters / 111_000.0
	lngDelta := radiusMeters / (111_000.0 * math.Cos(lat*math.Pi/180))

	venues, err := s.venues.ListInBoundingBox(ctx,
		lat-latDelta, lat+latDelta,
		lng-lngDelta, lng+lngDelta)
	if err != nil {
		return nil, err
	}

	sort.Slice(venues, func(i, j int) bool {
		return haversineMeters(lat, lng, venues[i].Latitude, venues[i].Longitude) <
			haversineMeters(lat, lng, venues[j].Latitude, venues[j].Longitude)
	})
	if len(venues) > limit {
		venues = venues[:limit]
	}

	ids := make([]uint64, len(venues))
	for i, v := range venues {
		ids[i] = v.ID
	}
	views, err := s.statuses.ReadMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]model.VenueMapItem, len(venues))
	for i, v := range venues {
		items[i] = model.VenueMapItem{
			ID:        v.ID,
			Name:      v.Name,
			Latitude:  v.Latitude,
			Longitude: v.Longitude,
			Address:   v.Address,
			CreatedAt: v.CreatedAt,
			Status:    views[v.ID],
		}
	}
	return items, nil
}

// haversineMeters is the great-circle distance between two points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
