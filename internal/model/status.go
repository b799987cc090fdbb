package model

import "time"

// StatusTTL is how long a status write stays fresh. It drives both the
// stored expires_at column and the Redis cache entry TTL.
const StatusTTL = 30 * time.Minute

// staleAfterMinutes is the recomputed-staleness threshold. It encodes the
// same 30 minutes as StatusTTL but is applied to the age of updated_at,
// not to the stored expiry.
const staleAfterMinutes = 30

// LabelUnknown is synthesized for venues without a status record. It is
// never stored or cached.
const LabelUnknown = "UNKNOWN"

// Crowd level labels stored in venue_statuses.crowd_level.
const (
	CrowdRelaxed = "RELAXED"
	CrowdNormal  = "NORMAL"
	CrowdBusy    = "BUSY"
	CrowdFull    = "FULL"
)

// Availability labels stored in the per-party-size columns.
const (
	AvailabilityYes   = "YES"
	AvailabilityMaybe = "MAYBE"
	AvailabilityNo    = "NO"
)

// ValidCrowdLevel reports whether s is one of the storable crowd labels.
func ValidCrowdLevel(s string) bool {
	switch s {
	case CrowdRelaxed, CrowdNormal, CrowdBusy, CrowdFull:
		return true
	}
	return false
}

// ValidAvailability reports whether s is one of the storable availability labels.
func ValidAvailability(s string) bool {
	switch s {
	case AvailabilityYes, AvailabilityMaybe, AvailabilityNo:
		return true
	}
	return false
}

// VenueStatus is the live occupancy record for a venue, at most one per
// venue. It corresponds to a row in the `venue_statuses` table and is
// overwritten in place on every owner update.
//
// Fields:
//  VenueID    – primary key, references venues.id.
//  CrowdLevel – RELAXED | NORMAL | BUSY | FULL.
//  Party2..4  – seating availability for party sizes 2, 3 and 4.
//  UpdatedAt  – when the owner last wrote the status.
//  ExpiresAt  – UpdatedAt + StatusTTL, fixed at write time.
type VenueStatus struct {
	VenueID    uint64    `json:"venue_id"`
	CrowdLevel string    `json:"crowd_level"`
	Party2     string    `json:"party2"`
	Party3     string    `json:"party3"`
	Party4     string    `json:"party4"`
	UpdatedAt  time.Time `json:"updated_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the stored expiry has passed. This is the
// stored-field signal; recomputed staleness lives on StatusView.
func (s *VenueStatus) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// StatusView is the derived, read-only projection served to customers.
// Staleness is always recomputed from UpdatedAt against the current time,
// never taken from a cache TTL or the stored expiry.
type StatusView struct {
	CrowdLevel string     `json:"crowd_level"`
	Party2     string     `json:"party2"`
	Party3     string     `json:"party3"`
	Party4     string     `json:"party4"`
	UpdatedAt  *time.Time `json:"updated_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	Stale      bool       `json:"stale"`
	AgeMinutes int64      `json:"age_minutes"`
}

// NewStatusView computes the customer-facing view of a status record.
func NewStatusView(s *VenueStatus, now time.Time) StatusView {
	age := int64(now.Sub(s.UpdatedAt).Minutes())
	updated := s.UpdatedAt
	expires := s.ExpiresAt
	return StatusView{
		CrowdLevel: s.CrowdLevel,
		Party2:     s.Party2,
		Party3:     s.Party3,
		Party4:     s.Party4,
		UpdatedAt:  &updated,
		ExpiresAt:  &expires,
		Stale:      age >= staleAfterMinutes,
		AgeMinutes: age,
	}
}

// UnknownStatusView is returned for venues with no status record. The
// sentinel is computed fresh on every miss and must never be cached.
func UnknownStatusView() StatusView {
	return StatusView{
		CrowdLevel: LabelUnknown,
		Party2:     LabelUnknown,
		Party3:     LabelUnknown,
		Party4:     LabelUnknown,
		Stale:      true,
		AgeMinutes: -1,
	}
}

// StatusEvent is the payload pushed to streaming subscribers and carried
// over the cross-instance update channel.
type StatusEvent struct {
	VenueID uint64     `json:"venue_id"`
	Status  StatusView `json:"status"`
}
