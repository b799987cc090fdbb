package model

import "time"

// Venue represents a physical location whose occupancy is tracked.
// Each venue belongs to one owner. This struct corresponds to a row
// in the `venues` table.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user ID of the venue owner (not exposed publicly).
//  Name      – human-friendly venue name.
//  Latitude  – WGS84 latitude, [-90, 90].
//  Longitude – WGS84 longitude, [-180, 180].
//  Address   – optional street address.
//  CreatedAt – when the row was created.
//  UpdatedAt – when the row was last updated.
type Venue struct {
	ID        uint64    `json:"id"`
	OwnerID   uint64    `json:"-"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VenueMapItem is one row of a nearby search result: the venue's static
// attributes zipped with its current status view, in geo ranking order.
type VenueMapItem struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Address   string     `json:"address"`
	CreatedAt time.Time  `json:"created_at"`
	Status    StatusView `json:"status"`
}
