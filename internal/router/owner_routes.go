package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-live-status/internal/handler"
	"github.com/iliyamo/venue-live-status/internal/middleware"
	"github.com/iliyamo/venue-live-status/internal/model"
)

// RegisterOwner mounts the owner-only venue and status management
// endpoints under /v1/owner. All routes require a valid access token
// with the OWNER role.
func RegisterOwner(e *echo.Echo, jwtSecret string, venues *handler.OwnerHandler, statuses *handler.StatusWriteHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner),
		limiter,
	)
	g.POST("/venues", venues.CreateVenue)
	g.GET("/venues", venues.ListVenues)
	g.PUT("/venues/:id", venues.UpdateVenue)
	g.DELETE("/venues/:id", venues.DeleteVenue)
	g.PUT("/venues/:id/status", statuses.UpdateStatus)
}
