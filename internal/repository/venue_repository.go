package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/venue-live-status/internal/model"
)

// VenueRepo encapsulates all database queries related to venues. It
// depends on a sql.DB connection configured at startup.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the provided DB handle. This
// allows dependency injection of the database in tests and at startup.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// Create inserts a new venue. On success the venue's ID, CreatedAt and
// UpdatedAt fields are populated so callers receive a full record.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const qInsert = `INSERT INTO venues (owner_id, name, latitude, longitude, address)
	                 VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, v.OwnerID, v.Name, v.Latitude, v.Longitude, v.Address)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)

	const qSelect = `SELECT created_at, updated_at FROM venues WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, v.ID).Scan(&v.CreatedAt, &v.UpdatedAt)
}

// GetByID fetches a venue by its ID regardless of owner. It returns
// ErrVenueNotFound if no row exists.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	const q = `SELECT id, owner_id, name, latitude, longitude, address, created_at, updated_at
	           FROM venues WHERE id = ?`
	var v model.Venue
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.OwnerID, &v.Name, &v.Latitude, &v.Longitude, &v.Address, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListByOwner returns all venues for a specific owner ordered by id.
func (r *VenueRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Venue, error) {
	const q = `SELECT id, owner_id, name, latitude, longitude, address, created_at, updated_at
	           FROM venues WHERE owner_id = ? ORDER BY id`
	return r.queryVenues(ctx, q, ownerID)
}

// List returns a page of venues for public browsing.
func (r *VenueRepo) List(ctx context.Context, limit, offset int) ([]*model.Venue, error) {
	const q = `SELECT id, owner_id, name, latitude, longitude, address, created_at, updated_at
	           FROM venues ORDER BY id LIMIT ? OFFSET ?`
	return r.queryVenues(ctx, q, limit, offset)
}

// SearchByName returns a page of venues whose name contains the given
// term, case-insensitively.
func (r *VenueRepo) SearchByName(ctx context.Context, name string, limit, offset int) ([]*model.Venue, error) {
	const q = `SELECT id, owner_id, name, latitude, longitude, address, created_at, updated_at
	           FROM venues WHERE LOWER(name) LIKE LOWER(CONCAT('%', ?, '%'))
	           ORDER BY id LIMIT ? OFFSET ?`
	return r.queryVenues(ctx, q, name, limit, offset)
}

// ListInBoundingBox returns all venues inside the given coordinate box.
// This is the geo prefilter for nearby search; precise distance ranking
// happens in the service layer.
func (r *VenueRepo) ListInBoundingBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*model.Venue, error) {
	const q = `SELECT id, owner_id, name, latitude, longitude, address, created_at, updated_at
	           FROM venues
	           WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`
	return r.queryVenues(ctx, q, minLat, maxLat, minLng, maxLng)
}

// Update changes a venue's name and address if it belongs to the given
// owner. Empty name keeps the current one; address is always overwritten.
// Returns ErrVenueNotFound when the venue does not exist and ErrForbidden
// when it is owned by someone else.
func (r *VenueRepo) Update(ctx context.Context, id, ownerID uint64, name, address string) error {
	if err := r.checkOwnership(ctx, id, ownerID); err != nil {
		return err
	}
	const q = `UPDATE venues
	           SET name = COALESCE(NULLIF(?, ''), name), address = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	_, err := r.db.ExecContext(ctx, q, name, address, id, ownerID)
	return err
}

// DeleteByIDAndOwner removes a venue and its live status row provided it
// belongs to the specified owner. The deletion runs in a transaction.
func (r *VenueRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var dbOwnerID uint64
	if err = tx.QueryRowContext(ctx, `SELECT owner_id FROM venues WHERE id = ?`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrVenueNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		err = ErrForbidden
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM venue_statuses WHERE venue_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}

func (r *VenueRepo) checkOwnership(ctx context.Context, id, ownerID uint64) error {
	var dbOwnerID uint64
	if err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM venues WHERE id = ?`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrVenueNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	return nil
}

func (r *VenueRepo) queryVenues(ctx context.Context, q string, args ...any) ([]*model.Venue, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Venue
	for rows.Next() {
		v := new(model.Venue)
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Name, &v.Latitude, &v.Longitude, &v.Address, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
