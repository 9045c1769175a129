package handler // show scheduling handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/service"
)

// CreateShow handles POST /v1/shows and schedules a new show. The venue
// and act are resolved under the caller's scope, which is what confines
// the new show to the caller's tenant; a cross-tenant venue or act id
// simply does not resolve. The response includes any other shows at the
// venue within 48 hours; advisory only, the create proceeds regardless.
func (h *API) CreateShow(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body struct {
		VenueID     string `json:"venue_id"`
		ActID       string `json:"act_id"`
		TicketCount int64  `json:"ticket_count"`
		StartsAt    string `json:"starts_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.VenueID == "" || body.ActID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "venue_id and act_id are required"})
	}
	if body.TicketCount <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ticket_count must be positive"})
	}
	startsAt := strings.TrimSpace(body.StartsAt)
	if startsAt == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "starts_at is required"})
	}

	ctx := c.Request().Context()
	venue, err := h.VenueRepo.GetByPublicID(ctx, sc, body.VenueID)
	if err != nil {
		return respondError(c, err)
	}
	act, err := h.ActRepo.GetByPublicID(ctx, sc, body.ActID)
	if err != nil {
		return respondError(c, err)
	}
	// Scoped lookups already confine both for tenant callers; this guard
	// matters under the admin scope, where nothing is filtered.
	if venue.TenantID != act.TenantID {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "venue and act belong to different tenants"})
	}

	// Resolve the wall-clock start in the venue's zone on that date.
	start, err := service.ResolveStartTime(venue, startsAt)
	if err != nil {
		return respondError(c, err)
	}

	// Advisory conflict check before inserting so the new show does not
	// appear in its own report.
	nearby, err := h.ShowRepo.FindInWindow(ctx, sc, venue.ID, 0, start.Add(-service.NearbyWindow), start.Add(service.NearbyWindow))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check existing shows"})
	}

	show := &repository.Show{
		VenueID:     venue.ID,
		ActID:       act.ID,
		TicketCount: body.TicketCount,
		StartsAt:    start,
	}
	if err := h.ShowRepo.Create(ctx, show); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create show"})
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"show":         toShowResponse(show),
		"nearby_shows": toNearbyResponses(nearby),
	})
}

// GetShow handles GET /v1/shows/:id.
func (h *API) GetShow(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	s, err := h.ShowRepo.GetByPublicID(c.Request().Context(), sc, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toShowResponse(s))
}

// ListShowsAtVenue handles GET /v1/venues/:id/shows.
func (h *API) ListShowsAtVenue(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	venue, err := h.VenueRepo.GetByPublicID(ctx, sc, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	shows, err := h.ShowRepo.ListByVenue(ctx, sc, venue.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load shows"})
	}
	items := make([]showResponse, 0, len(shows))
	for i := range shows {
		items = append(items, toShowResponse(&shows[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
