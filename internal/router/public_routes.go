package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-live-status/internal/handler"
)

// RegisterPublic mounts the unauthenticated browse, status and stream
// endpoints under /v1/venues. Read traffic is not rate limited; the
// limiter guards only the auth and owner write routes.
func RegisterPublic(e *echo.Echo, venues *handler.PublicVenueHandler, statuses *handler.PublicStatusHandler, streams *handler.StreamHandler) {
	g := e.Group("/v1/venues")
	g.GET("", venues.ListVenues)
	g.GET("/search", venues.SearchVenues)
	g.GET("/near", venues.NearbyVenues)
	// Registered before /:id so Echo does not treat "status" as an ID.
	g.GET("/status/stream", streams.Stream)
	g.GET("/:id", venues.GetVenue)
	g.GET("/:id/status", statuses.GetStatus)
	g.GET("/:id/status/detail", statuses.GetStatusDetail)
}
