package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-live-status/internal/model"
	"github.com/iliyamo/venue-live-status/internal/queue"
	"github.com/iliyamo/venue-live-status/internal/repository"
	"github.com/iliyamo/venue-live-status/internal/service"
)

// StatusWriteHandler serves PUT /v1/owner/venues/:id/status.
type StatusWriteHandler struct {
	Venues   *repository.VenueRepo
	Statuses *service.StatusService
}

func NewStatusWriteHandler(venues *repository.VenueRepo, statuses *service.StatusService) *StatusWriteHandler {
	return &StatusWriteHandler{Venues: venues, Statuses: statuses}
}

type statusReq struct {
	CrowdLevel string `json:"crowd_level"`
	Party2     string `json:"party2"`
	Party3     string `json:"party3"`
	Party4     string `json:"party4"`
}

// UpdateStatus validates ownership and labels, then persists and
// publishes the new status. The audit event is published to the broker
// best-effort off the request path.
func (h *StatusWriteHandler) UpdateStatus(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.CrowdLevel = strings.ToUpper(strings.TrimSpace(req.CrowdLevel))
	req.Party2 = strings.ToUpper(strings.TrimSpace(req.Party2))
	req.Party3 = strings.ToUpper(strings.TrimSpace(req.Party3))
	req.Party4 = strings.ToUpper(strings.TrimSpace(req.Party4))
	if !model.ValidCrowdLevel(req.CrowdLevel) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid crowd_level"})
	}
	if !model.ValidAvailability(req.Party2) || !model.ValidAvailability(req.Party3) || !model.ValidAvailability(req.Party4) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid availability label"})
	}

	ctx := c.Request().Context()
	venue, err := h.Venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if venue.OwnerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	status, err := h.Statuses.Upsert(ctx, venueID, req.CrowdLevel, req.Party2, req.Party3, req.Party4)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status update failed"})
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue.PublishStatusUpdated(pubCtx, queue.StatusUpdatedEvent{
			VenueID:    venueID,
			VenueName:  venue.Name,
			OwnerID:    ownerID,
			CrowdLevel: status.CrowdLevel,
			Party2:     status.Party2,
			Party3:     status.Party3,
			Party4:     status.Party4,
			UpdatedAt:  status.UpdatedAt.Format(time.RFC3339),
		}); err != nil {
			log.Printf("status-handler: audit publish failed for venue %d: %v", venueID, err)
		}
	}()

	return c.JSON(http.StatusOK, echo.Map{
		"venue_id":    status.VenueID,
		"crowd_level": status.CrowdLevel,
		"party2":      status.Party2,
		"party3":      status.Party3,
		"party4":      status.Party4,
		"updated_at":  status.UpdatedAt,
		"expires_at":  status.ExpiresAt,
	})
}
