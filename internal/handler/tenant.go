package handler // tenant provisioning handlers, admin scope only

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/stagepass/internal/repository"
)

// CreateTenant handles POST /v1/tenants. Provisioning is reachable only
// through the admin-key path; the route carries RequireRole("ADMIN"),
// and the scope is re-checked here so a routing mistake cannot let a
// tenant token provision organizations.
func (h *API) CreateTenant(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	if !sc.IsAdmin() {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}
	var body struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	slug := strings.ToLower(strings.TrimSpace(body.Slug))
	name := strings.TrimSpace(body.Name)
	if slug == "" || name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "slug and name are required"})
	}

	t := &repository.Tenant{Slug: slug, Name: name, IsActive: true}
	if err := h.TenantRepo.Create(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create tenant"})
	}
	return c.JSON(http.StatusCreated, toTenantResponse(t))
}

// GetTenant handles GET /v1/tenants/:slug. Provisioning tooling uses it
// to recover the numeric tenant id behind a slug when issuing tokens at
// the edge; like creation it is admin scope only.
func (h *API) GetTenant(c echo.Context) error {
	sc, err := getScope(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	if !sc.IsAdmin() {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}
	t, err := h.TenantRepo.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTenantResponse(t))
}

func toTenantResponse(t *repository.Tenant) map[string]any {
	return map[string]any{
		"id":        t.PublicID,
		"slug":      t.Slug,
		"name":      t.Name,
		"is_active": t.IsActive,
		"tenant_id": t.ID, // numeric id the edge embeds in issued JWTs
	}
}
