// Package queue defines message payloads exchanged over the message
// broker, plus the publisher and background consumer for the status audit
// trail.
package queue

// StatusUpdatedEvent is published after an owner successfully updates a
// venue's live status. It carries enough for downstream consumers to log
// or feed analytics without querying the primary database. Delivery is
// best-effort and never affects the request that produced it.
type StatusUpdatedEvent struct {
	VenueID    uint64 `json:"venue_id"`
	VenueName  string `json:"venue_name"`
	OwnerID    uint64 `json:"owner_id"`
	CrowdLevel string `json:"crowd_level"`
	Party2     string `json:"party2"`
	Party3     string `json:"party3"`
	Party4     string `json:"party4"`
	UpdatedAt  string `json:"updated_at"`
}
