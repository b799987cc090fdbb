package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-live-status/internal/repository"
	"github.com/iliyamo/venue-live-status/internal/service"
)

// PublicStatusHandler serves unauthenticated status reads.
type PublicStatusHandler struct {
	Statuses *service.StatusService
}

func NewPublicStatusHandler(statuses *service.StatusService) *PublicStatusHandler {
	return &PublicStatusHandler{Statuses: statuses}
}

// GetStatus handles GET /v1/venues/:id/status. A venue with no stored
// status returns the UNKNOWN sentinel with 200, never 404, so map
// clients can render every pin uniformly.
func (h *PublicStatusHandler) GetStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	view, err := h.Statuses.Read(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read failed"})
	}
	return c.JSON(http.StatusOK, view)
}

// GetStatusDetail handles GET /v1/venues/:id/status/detail. Unlike
// GetStatus it reads the raw stored record, 404s on absence and reports
// the stored expiry flag.
func (h *PublicStatusHandler) GetStatusDetail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	status, err := h.Statuses.GetOrFail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStatusNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "status not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"venue_id":    status.VenueID,
		"crowd_level": status.CrowdLevel,
		"party2":      status.Party2,
		"party3":      status.Party3,
		"party4":      status.Party4,
		"updated_at":  status.UpdatedAt,
		"expires_at":  status.ExpiresAt,
		"expired":     status.Expired(time.Now().UTC()),
	})
}
