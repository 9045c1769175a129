package handler // ticket offer handlers: the capacity-checked write path

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type offerBody struct {
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	TicketCount int64  `json:"ticket_count"`
}

// CreateOffer handles POST /v1/shows/:id/offers. The allocation engine
// validates the fields and commits the offer only if the requested
// count fits the show's remaining capacity at commit time; a 422
// response carries the count still available.
func (h *API) CreateOffer(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body offerBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	o, err := h.Allocation.CreateOffer(c.Request().Context(), sc, c.Param("id"), body.Name, body.PriceCents, body.TicketCount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toOfferResponse(o))
}

// UpdateOffer handles PUT /v1/offers/:id. The owning show and the offer
// id are immutable; name, price and ticket count are replaced. The new
// count must fit the capacity left by the other offers on the show.
func (h *API) UpdateOffer(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body offerBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	o, err := h.Allocation.UpdateOffer(c.Request().Context(), sc, c.Param("id"), body.Name, body.PriceCents, body.TicketCount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toOfferResponse(o))
}

// GetOffer handles GET /v1/offers/:id.
func (h *API) GetOffer(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	o, err := h.OfferRepo.GetByPublicID(c.Request().Context(), sc, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toOfferResponse(o))
}

// ListOffers handles GET /v1/shows/:id/offers.
func (h *API) ListOffers(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	show, err := h.ShowRepo.GetByPublicID(ctx, sc, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	offers, err := h.OfferRepo.ListByShow(ctx, sc, show.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load offers"})
	}
	items := make([]offerResponse, 0, len(offers))
	for i := range offers {
		items = append(items, toOfferResponse(&offers[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetShowCapacity handles GET /v1/shows/:id/capacity and reports the
// show's total, allocated and available ticket counts.
func (h *API) GetShowCapacity(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	cap, err := h.Allocation.GetShowCapacity(c.Request().Context(), sc, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":     cap.Total,
		"allocated": cap.Allocated,
		"available": cap.Available,
	})
}
