package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/venue-live-status/internal/model"
	"github.com/iliyamo/venue-live-status/internal/stream"
)

// StartUpdateListener subscribes to the shared status update channel and
// forwards every received event to this instance's local subscription
// registry, so subscribers observe writes regardless of which instance
// handled them. It blocks until ctx is cancelled, reconnecting with
// backoff whenever the subscription drops. Malformed messages are logged
// and dropped; they never stop the listener.
func StartUpdateListener(ctx context.Context, rdb *redis.Client, registry *stream.Registry) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		sub := rdb.Subscribe(ctx, updateChannel)
		if _, err := sub.Receive(ctx); err != nil {
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}
			log.Printf("status-bridge: subscribe failed: %v; retrying in %s", err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful subscribe

		for msg := range sub.Channel() {
			var ev model.StatusEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("status-bridge: dropping malformed message: %v", err)
				continue
			}
			registry.Publish(ev.VenueID, ev)
		}
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		log.Printf("status-bridge: subscription lost; reconnecting")
	}
}
