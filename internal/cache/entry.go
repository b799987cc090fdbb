package cache

import (
	"time"

	"github.com/iliyamo/venue-live-status/internal/model"
)

// Entry is the serialized projection of a status record stored under a
// per-venue Redis key. Timestamps are RFC 3339 text so entries stay
// readable from redis-cli. An entry may outlive correctness if clocks
// drift; staleness is always recomputed from the embedded updated_at,
// never from the key's TTL.
type Entry struct {
	VenueID    uint64 `json:"venue_id"`
	CrowdLevel string `json:"crowd_level"`
	Party2     string `json:"party2"`
	Party3     string `json:"party3"`
	Party4     string `json:"party4"`
	UpdatedAt  string `json:"updated_at"`
	ExpiresAt  string `json:"expires_at"`
}

// NewEntry projects a status record into its cacheable form.
func NewEntry(s *model.VenueStatus) Entry {
	return Entry{
		VenueID:    s.VenueID,
		CrowdLevel: s.CrowdLevel,
		Party2:     s.Party2,
		Party3:     s.Party3,
		Party4:     s.Party4,
		UpdatedAt:  s.UpdatedAt.UTC().Format(time.RFC3339Nano),
		ExpiresAt:  s.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
}

// View converts the entry back into a customer-facing view, recomputing
// staleness against now. It returns false when the entry cannot be
// converted; callers must treat that as a cache miss.
func (e Entry) View(now time.Time) (model.StatusView, bool) {
	updated, err := time.Parse(time.RFC3339Nano, e.UpdatedAt)
	if err != nil {
		return model.StatusView{}, false
	}
	expires, err := time.Parse(time.RFC3339Nano, e.ExpiresAt)
	if err != nil {
		return model.StatusView{}, false
	}
	s := model.VenueStatus{
		VenueID:    e.VenueID,
		CrowdLevel: e.CrowdLevel,
		Party2:     e.Party2,
		Party3:     e.Party3,
		Party4:     e.Party4,
		UpdatedAt:  updated,
		ExpiresAt:  expires,
	}
	return model.NewStatusView(&s, now), true
}
