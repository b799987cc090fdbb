package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/venue-live-status/internal/model"
)

// StatusRepo is the source of truth for venue live status. A venue has at
// most one row in venue_statuses; writes overwrite it in place and no
// history is retained. Expiry never deletes a row, it only affects the
// derived flags computed by callers.
type StatusRepo struct {
	db *sql.DB
}

// NewStatusRepo constructs a StatusRepo with the provided DB handle.
func NewStatusRepo(db *sql.DB) *StatusRepo {
	return &StatusRepo{db: db}
}

// Get fetches the status record for a venue. It returns ErrStatusNotFound
// when the venue has never had a status written.
func (r *StatusRepo) Get(ctx context.Context, venueID uint64) (*model.VenueStatus, error) {
	const q = `SELECT venue_id, crowd_level, party2, party3, party4, updated_at, expires_at
	           FROM venue_statuses WHERE venue_id = ?`
	var s model.VenueStatus
	if err := r.db.QueryRowContext(ctx, q, venueID).Scan(
		&s.VenueID, &s.CrowdLevel, &s.Party2, &s.Party3, &s.Party4, &s.UpdatedAt, &s.ExpiresAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetMany fetches status records for a batch of venue IDs in one query.
// Venues without a record are simply absent from the result; callers
// synthesize the UNKNOWN view for them.
func (r *StatusRepo) GetMany(ctx context.Context, venueIDs []uint64) ([]*model.VenueStatus, error) {
	if len(venueIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(venueIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(venueIDs))
	for i, id := range venueIDs {
		args[i] = id
	}
	q := `SELECT venue_id, crowd_level, party2, party3, party4, updated_at, expires_at
	      FROM venue_statuses WHERE venue_id IN (` + placeholders + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.VenueStatus
	for rows.Next() {
		s := new(model.VenueStatus)
		if err := rows.Scan(&s.VenueID, &s.CrowdLevel, &s.Party2, &s.Party3, &s.Party4, &s.UpdatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes the status record, inserting on first write and
// overwriting all fields on every subsequent write. Concurrent writers
// for the same venue are last-write-wins by updated_at.
func (r *StatusRepo) Upsert(ctx context.Context, s *model.VenueStatus) error {
	const q = `INSERT INTO venue_statuses (venue_id, crowd_level, party2, party3, party4, updated_at, expires_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               crowd_level = VALUES(crowd_level),
	               party2 = VALUES(party2),
	               party3 = VALUES(party3),
	               party4 = VALUES(party4),
	               updated_at = VALUES(updated_at),
	               expires_at = VALUES(expires_at)`
	_, err := r.db.ExecContext(ctx, q,
		s.VenueID, s.CrowdLevel, s.Party2, s.Party3, s.Party4, s.UpdatedAt, s.ExpiresAt)
	return err
}
