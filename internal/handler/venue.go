package handler // venue CRUD and the nearby-shows lookup

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/stagepass/internal/repository"
)

type venueBody struct {
	Name        string   `json:"name"`
	Address     *string  `json:"address"`
	Capacity    uint32   `json:"capacity"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Timezone    string   `json:"timezone"`
}

func (b *venueBody) validate() (string, bool) {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return "name is required", false
	}
	b.Timezone = strings.TrimSpace(b.Timezone)
	if b.Timezone == "" {
		return "timezone is required", false
	}
	if _, err := time.LoadLocation(b.Timezone); err != nil {
		return "timezone must be a valid IANA zone name", false
	}
	return "", true
}

// CreateVenue handles POST /v1/venues.
func (h *API) CreateVenue(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body venueBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if msg, ok := body.validate(); !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	if sc.IsAdmin() {
		// Venues belong to a tenant; provisioning flows create them
		// through tenant-scoped tokens, not the admin key.
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "venue creation requires a tenant token"})
	}
	v := &repository.Venue{
		Name:        body.Name,
		Address:     body.Address,
		Capacity:    body.Capacity,
		Description: body.Description,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		Timezone:    body.Timezone,
	}
	if err := h.VenueRepo.Create(c.Request().Context(), sc, v); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create venue"})
	}
	return c.JSON(http.StatusCreated, toVenueResponse(v))
}

// ListVenues handles GET /v1/venues.
func (h *API) ListVenues(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	venues, err := h.VenueRepo.List(c.Request().Context(), sc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load venues"})
	}
	items := make([]venueResponse, 0, len(venues))
	for i := range venues {
		items = append(items, toVenueResponse(&venues[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetVenue handles GET /v1/venues/:id.
func (h *API) GetVenue(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	v, err := h.VenueRepo.GetByPublicID(c.Request().Context(), sc, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toVenueResponse(v))
}

// UpdateVenue handles PUT /v1/venues/:id. Tenant ownership is immutable;
// only the descriptive fields change. A no-op update returns the current
// row with 200.
func (h *API) UpdateVenue(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body venueBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if msg, ok := body.validate(); !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	pid := c.Param("id")
	v := &repository.Venue{
		Name:        body.Name,
		Address:     body.Address,
		Capacity:    body.Capacity,
		Description: body.Description,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		Timezone:    body.Timezone,
	}
	err = h.VenueRepo.UpdateByPublicID(c.Request().Context(), sc, pid, v)
	if err != nil && !errors.Is(err, repository.ErrNoChange) {
		return respondError(c, err)
	}
	fresh, err := h.VenueRepo.GetByPublicID(c.Request().Context(), sc, pid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toVenueResponse(fresh))
}

// NearbyShows handles GET /v1/venues/:id/nearby-shows?starts_at=...
// It returns the other shows at the venue within 48 hours of the
// candidate start, the advisory input to scheduling decisions. The
// candidate time is a wall-clock value resolved in the venue's zone.
func (h *API) NearbyShows(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	startsAt := strings.TrimSpace(c.QueryParam("starts_at"))
	if startsAt == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "starts_at is required"})
	}
	rows, err := h.Schedule.FindNearbyShows(c.Request().Context(), sc, c.Param("id"), startsAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": toNearbyResponses(rows)})
}
