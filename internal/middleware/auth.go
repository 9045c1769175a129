package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
	"golang.org/x/crypto/bcrypt"   // bcrypt verifies the administrative API key

	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/tenant"
)

// scopeKey is the echo context key under which the resolved tenant scope
// is stored for the duration of one request.
const scopeKey = "tenant_scope"

// TenantAuth returns an Echo middleware that resolves the caller's
// tenant scope and stores it in the request context. Two credentials are
// accepted:
//
//   - X-Admin-Key header, verified with bcrypt against adminKeyHash:
//     yields the unrestricted administrative scope. When no hash is
//     configured, admin access is disabled entirely.
//   - Bearer JWT signed with secret (HS256), carrying tenant_id and
//     role claims as issued by the edge authentication layer: yields a
//     scope bound to that tenant. The tenant must still exist and be
//     active; a token for a deactivated tenant is rejected.
//
// Handlers read the result via CurrentScope. Token issuance, sessions
// and user identity are not this service's concern.
func TenantAuth(secret, adminKeyHash string, tenants *repository.TenantRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Administrative access path. bcrypt comparison keeps the
			// configured value a hash rather than the key itself.
			if key := c.Request().Header.Get("X-Admin-Key"); key != "" {
				if adminKeyHash == "" {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "admin access disabled"})
				}
				if err := bcrypt.CompareHashAndPassword([]byte(adminKeyHash), []byte(key)); err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid admin key"})
				}
				c.Set(scopeKey, tenant.Admin())
				c.Set("role", "ADMIN")
				return next(c)
			}

			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse the token using the HS256 signing method and our
			// secret. Reject any other signing algorithm.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			tenantID, ok := claimUint64(claims["tenant_id"])
			if !ok || tenantID == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant claim"})
			}
			// The token may outlive the tenant; confirm it still exists
			// and is active before honoring it.
			t, err := tenants.GetByID(c.Request().Context(), tenantID)
			if err != nil || !t.IsActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(scopeKey, tenant.ForTenant(tenantID))
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}

// CurrentScope retrieves the tenant scope stored by TenantAuth. The
// boolean is false when the middleware did not run, which means the
// route was misregistered; handlers respond 401 in that case.
func CurrentScope(c echo.Context) (tenant.Scope, bool) {
	sc, ok := c.Get(scopeKey).(tenant.Scope)
	return sc, ok
}

// claimUint64 coerces a JWT claim into a uint64. JSON numbers arrive as
// float64; string claims are parsed for robustness.
func claimUint64(v any) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
