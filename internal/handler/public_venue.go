package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-live-status/internal/repository"
	"github.com/iliyamo/venue-live-status/internal/service"
)

// PublicVenueHandler serves unauthenticated venue browsing endpoints.
type PublicVenueHandler struct {
	Venues *repository.VenueRepo
	Nearby *service.NearbyService
}

func NewPublicVenueHandler(venues *repository.VenueRepo, nearby *service.NearbyService) *PublicVenueHandler {
	return &PublicVenueHandler{Venues: venues, Nearby: nearby}
}

// GetVenue handles GET /v1/venues/:id.
func (h *PublicVenueHandler) GetVenue(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	venue, err := h.Venues.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, venue)
}

// ListVenues handles GET /v1/venues with limit/offset paging.
func (h *PublicVenueHandler) ListVenues(c echo.Context) error {
	limit := queryInt(c, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	items, err := h.Venues.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "limit": limit, "offset": offset})
}

// SearchVenues handles GET /v1/venues/search?q=.
func (h *PublicVenueHandler) SearchVenues(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	limit := queryInt(c, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	items, err := h.Venues.SearchByName(c.Request().Context(), q, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// NearbyVenues handles GET /v1/venues/near. Each result carries the
// venue's current status view; venues with no stored status report the
// UNKNOWN sentinel.
func (h *PublicVenueHandler) NearbyVenues(c echo.Context) error {
	lat, err1 := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lat and lng are required"})
	}
	radius := 1000.0
	if raw := c.QueryParam("radiusMeters"); raw != "" {
		radius, err1 = strconv.ParseFloat(raw, 64)
		if err1 != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid radiusMeters"})
		}
	}
	limit := queryInt(c, "limit", 50)

	items, err := h.Nearby.FindNearby(c.Request().Context(), lat, lng, radius, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCoordinates),
			errors.Is(err, service.ErrInvalidRadius),
			errors.Is(err, service.ErrInvalidLimit):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
