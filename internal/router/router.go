// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/stagepass/stagepass/internal/handler"
	"github.com/stagepass/stagepass/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check
// used by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the tenant-scoped API under /v1. Every route in
// the group runs the tenant auth middleware, so handlers can rely on a
// scope being present; the rate limiter runs after auth so tenant-keyed
// buckets work. The read cache wraps only the hot advisory reads
// (capacity and nearby shows); entity reads after writes should not
// serve stale rows.
func RegisterAPI(e *echo.Echo, a *handler.API, auth, rate, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(auth)
	g.Use(rate)
	g.Use(middleware.RequireRole("ADMIN", "ORGANIZER"))

	// Tenant provisioning and lookup, admin key only. The handlers
	// re-check the scope; the role gate here rejects organizer tokens
	// outright.
	g.POST("/tenants", a.CreateTenant, middleware.RequireRole("ADMIN"))
	g.GET("/tenants/:slug", a.GetTenant, middleware.RequireRole("ADMIN"))

	// Venues.
	g.POST("/venues", a.CreateVenue)
	g.GET("/venues", a.ListVenues)
	g.GET("/venues/:id", a.GetVenue)
	g.PUT("/venues/:id", a.UpdateVenue)
	g.GET("/venues/:id/shows", a.ListShowsAtVenue)
	g.GET("/venues/:id/nearby-shows", a.NearbyShows, cache)

	// Acts.
	g.POST("/acts", a.CreateAct)
	g.GET("/acts", a.ListActs)
	g.GET("/acts/:id", a.GetAct)
	g.PUT("/acts/:id", a.UpdateAct)

	// Shows.
	g.POST("/shows", a.CreateShow)
	g.GET("/shows/:id", a.GetShow)

	// Ticket offers and capacity.
	g.POST("/shows/:id/offers", a.CreateOffer)
	g.GET("/shows/:id/offers", a.ListOffers)
	g.GET("/shows/:id/capacity", a.GetShowCapacity, cache)
	g.GET("/offers/:id", a.GetOffer)
	g.PUT("/offers/:id", a.UpdateOffer)
}
