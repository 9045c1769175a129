package handler // act CRUD handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/stagepass/internal/repository"
)

// CreateAct handles POST /v1/acts.
func (h *API) CreateAct(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if sc.IsAdmin() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "act creation requires a tenant token"})
	}
	a := &repository.Act{Name: name}
	if err := h.ActRepo.Create(c.Request().Context(), sc, a); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create act"})
	}
	return c.JSON(http.StatusCreated, toActResponse(a))
}

// ListActs handles GET /v1/acts.
func (h *API) ListActs(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	acts, err := h.ActRepo.List(c.Request().Context(), sc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load acts"})
	}
	items := make([]actResponse, 0, len(acts))
	for i := range acts {
		items = append(items, toActResponse(&acts[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetAct handles GET /v1/acts/:id.
func (h *API) GetAct(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	a, err := h.ActRepo.GetByPublicID(c.Request().Context(), sc, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toActResponse(a))
}

// UpdateAct handles PUT /v1/acts/:id.
func (h *API) UpdateAct(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	pid := c.Param("id")
	err = h.ActRepo.UpdateByPublicID(c.Request().Context(), sc, pid, name)
	if err != nil && !errors.Is(err, repository.ErrNoChange) {
		return respondError(c, err)
	}
	fresh, err := h.ActRepo.GetByPublicID(c.Request().Context(), sc, pid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toActResponse(fresh))
}
