package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/service"
	"github.com/stagepass/stagepass/internal/tenant"
)

// newTestAPI wires the handler set over an unconnected DB handle. The
// guard-path tests below never reach a query.
func newTestAPI(t *testing.T) *API {
	t.Helper()
	db, err := sql.Open("mysql", "app@tcp(localhost:3306)/stagepass_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tenants := repository.NewTenantRepo(db)
	venues := repository.NewVenueRepo(db)
	acts := repository.NewActRepo(db)
	shows := repository.NewShowRepo(db)
	offers := repository.NewOfferRepo(db)
	alloc := service.NewAllocationService(offers, nil)
	sched := service.NewScheduleService(venues, shows)
	return NewAPI(tenants, venues, acts, shows, offers, alloc, sched)
}

func TestGetTenantRequiresAdminScope(t *testing.T) {
	a := newTestAPI(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/acme", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("slug")
	c.SetParamValues("acme")
	c.Set("tenant_scope", tenant.ForTenant(1))

	require.NoError(t, a.GetTenant(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateTenantRequiresAdminScope(t *testing.T) {
	a := newTestAPI(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants", strings.NewReader(`{"slug":"acme","name":"Acme"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("tenant_scope", tenant.ForTenant(1))

	require.NoError(t, a.CreateTenant(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTenantHandlersRejectMissingScope(t *testing.T) {
	a := newTestAPI(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/acme", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, a.GetTenant(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
