package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-live-status/internal/stream"
)

// StreamHandler serves GET /v1/venues/status/stream, the SSE endpoint
// that pushes live status updates for a set of venues.
type StreamHandler struct {
	Registry *stream.Registry
}

func NewStreamHandler(registry *stream.Registry) *StreamHandler {
	return &StreamHandler{Registry: registry}
}

// Stream upgrades the request to a server-sent event stream. The write
// loop drains the subscription until the client disconnects or the
// registry closes it (idle timeout, dead-subscriber removal).
func (h *StreamHandler) Stream(c echo.Context) error {
	venueIDs, err := parseVenueIDs(c.QueryParam("venueIds"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sub := h.Registry.Subscribe(venueIDs)
	defer sub.Close()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			return nil
		case ev := <-sub.Events():
			if err := writeEvent(res, ev); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeEvent(res *echo.Response, ev stream.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}

// parseVenueIDs parses the comma-separated venueIds query parameter,
// dropping duplicates and preserving order.
func parseVenueIDs(raw string) ([]uint64, error) {
	parts := strings.Split(raw, ",")
	seen := make(map[uint64]struct{}, len(parts))
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid venue id %q", p)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("venueIds is required")
	}
	return ids, nil
}
