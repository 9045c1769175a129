// Package handler implements the HTTP handlers. Handlers bind JSON,
// resolve the tenant scope stored by the auth middleware, call into
// repositories and services, and translate the error taxonomy to status
// codes: not-found (including cross-tenant) to 404, invalid arguments
// to 400, capacity violations to 422 with the remaining count in the
// body.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/stagepass/internal/middleware"
	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/service"
	"github.com/stagepass/stagepass/internal/tenant"
)

// API bundles the repositories and services the handlers need.
type API struct {
	TenantRepo *repository.TenantRepo
	VenueRepo  *repository.VenueRepo
	ActRepo    *repository.ActRepo
	ShowRepo   *repository.ShowRepo
	OfferRepo  *repository.OfferRepo
	Allocation *service.AllocationService
	Schedule   *service.ScheduleService
}

// NewAPI constructs the handler set and panics if any dependency is nil.
func NewAPI(tenants *repository.TenantRepo, venues *repository.VenueRepo, acts *repository.ActRepo, shows *repository.ShowRepo, offers *repository.OfferRepo, alloc *service.AllocationService, sched *service.ScheduleService) *API {
	if tenants == nil || venues == nil || acts == nil || shows == nil || offers == nil || alloc == nil || sched == nil {
		panic("nil dependency passed to NewAPI")
	}
	return &API{
		TenantRepo: tenants,
		VenueRepo:  venues,
		ActRepo:    acts,
		ShowRepo:   shows,
		OfferRepo:  offers,
		Allocation: alloc,
		Schedule:   sched,
	}
}

// getScope fetches the tenant scope the auth middleware stored. Missing
// scope means the route bypassed authentication, which is a wiring bug;
// respond 401 rather than default to anything permissive.
func getScope(c echo.Context) (tenant.Scope, error) {
	sc, ok := middleware.CurrentScope(c)
	if !ok {
		return tenant.Scope{}, errors.New("no tenant scope in context")
	}
	return sc, nil
}

// respondError maps a repository/service error to its transport status.
func respondError(c echo.Context, err error) error {
	var capErr *repository.CapacityError
	switch {
	case errors.As(err, &capErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":     capErr.Error(),
			"available": capErr.Available,
		})
	case errors.Is(err, service.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrTenantNotFound),
		errors.Is(err, repository.ErrVenueNotFound),
		errors.Is(err, repository.ErrActNotFound),
		errors.Is(err, repository.ErrShowNotFound),
		errors.Is(err, repository.ErrOfferNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// Response shapes. External ids are presented as "id"; storage row ids
// never leave this layer. Times are RFC 3339 UTC.

type venueResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     *string  `json:"address,omitempty"`
	Capacity    uint32   `json:"capacity"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Timezone    string   `json:"timezone"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func toVenueResponse(v *repository.Venue) venueResponse {
	return venueResponse{
		ID:          v.PublicID,
		Name:        v.Name,
		Address:     v.Address,
		Capacity:    v.Capacity,
		Description: v.Description,
		Latitude:    v.Latitude,
		Longitude:   v.Longitude,
		Timezone:    v.Timezone,
		CreatedAt:   fmtTime(v.CreatedAt),
		UpdatedAt:   fmtTime(v.UpdatedAt),
	}
}

type actResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toActResponse(a *repository.Act) actResponse {
	return actResponse{ID: a.PublicID, Name: a.Name, CreatedAt: fmtTime(a.CreatedAt), UpdatedAt: fmtTime(a.UpdatedAt)}
}

type showResponse struct {
	ID          string `json:"id"`
	TicketCount int64  `json:"ticket_count"`
	StartsAt    string `json:"starts_at"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toShowResponse(s *repository.Show) showResponse {
	return showResponse{
		ID:          s.PublicID,
		TicketCount: s.TicketCount,
		StartsAt:    fmtTime(s.StartsAt),
		CreatedAt:   fmtTime(s.CreatedAt),
		UpdatedAt:   fmtTime(s.UpdatedAt),
	}
}

type offerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	TicketCount int64  `json:"ticket_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toOfferResponse(o *repository.Offer) offerResponse {
	return offerResponse{
		ID:          o.PublicID,
		Name:        o.Name,
		PriceCents:  o.PriceCents,
		TicketCount: o.TicketCount,
		CreatedAt:   fmtTime(o.CreatedAt),
		UpdatedAt:   fmtTime(o.UpdatedAt),
	}
}

type nearbyShowResponse struct {
	ShowID   string `json:"show_id"`
	ActName  string `json:"act_name"`
	StartsAt string `json:"starts_at"`
}

func toNearbyResponses(rows []repository.NearbyShow) []nearbyShowResponse {
	out := make([]nearbyShowResponse, 0, len(rows))
	for _, n := range rows {
		out = append(out, nearbyShowResponse{
			ShowID:   n.ShowPublicID,
			ActName:  n.ActName,
			StartsAt: fmtTime(n.StartsAt),
		})
	}
	return out
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }
