package cache

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/venue-live-status/internal/model"
)

const (
	keyPrefix     = "venue:status:"
	updateChannel = "venue:status:updates"
)

// Redis is the active cache variant, backed by a shared Redis instance.
// All operations swallow backend errors (log, then behave like the
// disabled variant for that call) so a degraded cache tier can never fail
// a read or write request.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an established Redis client. The caller is responsible
// for choosing Noop instead when no client is available.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func key(venueID uint64) string {
	return keyPrefix + strconv.FormatUint(venueID, 10)
}

// Get returns the cached entry for a venue, or a miss on absence, backend
// failure or a corrupt value.
func (c *Redis) Get(ctx context.Context, venueID uint64) (Entry, bool) {
	raw, err := c.rdb.Get(ctx, key(venueID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("status-cache: GET failed: venue_id=%d err=%v", venueID, err)
		}
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Printf("status-cache: corrupt entry: venue_id=%d err=%v", venueID, err)
		return Entry{}, false
	}
	return e, true
}

// GetMany returns cached entries for a batch of venue IDs in one MGET.
// The result only contains hits.
func (c *Redis) GetMany(ctx context.Context, venueIDs []uint64) map[uint64]Entry {
	if len(venueIDs) == 0 {
		return nil
	}
	keys := make([]string, len(venueIDs))
	for i, id := range venueIDs {
		keys[i] = key(id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("status-cache: MGET failed: err=%v", err)
		return nil
	}
	out := make(map[uint64]Entry, len(venueIDs))
	for i, v := range vals {
		if i >= len(venueIDs) {
			break
		}
		s, ok := v.(string)
		if !ok {
			continue // nil = miss for this key
		}
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			log.Printf("status-cache: corrupt entry in MGET: venue_id=%d", venueIDs[i])
			continue
		}
		out[venueIDs[i]] = e
	}
	return out
}

// Put writes through a status record with the record TTL. Failures are
// logged and dropped; the next read falls back to the store.
func (c *Redis) Put(ctx context.Context, status *model.VenueStatus) {
	body, err := json.Marshal(NewEntry(status))
	if err != nil {
		log.Printf("status-cache: marshal entry failed: venue_id=%d err=%v", status.VenueID, err)
		return
	}
	if err := c.rdb.Set(ctx, key(status.VenueID), body, model.StatusTTL).Err(); err != nil {
		log.Printf("status-cache: SET failed: venue_id=%d err=%v", status.VenueID, err)
	}
}

// Publish broadcasts a status event on the shared update channel so every
// instance's listener can forward it to local subscribers. It returns
// false when the event was not dispatched, signalling the caller to fan
// out locally instead.
func (c *Redis) Publish(ctx context.Context, event model.StatusEvent) bool {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("status-cache: marshal event failed: venue_id=%d err=%v", event.VenueID, err)
		return false
	}
	if err := c.rdb.Publish(ctx, updateChannel, body).Err(); err != nil {
		log.Printf("status-cache: PUBLISH failed: venue_id=%d err=%v", event.VenueID, err)
		return false
	}
	return true
}
