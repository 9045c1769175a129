package repository

import "github.com/stagepass/stagepass/internal/tenant"

// Tenant scoping for every entity resolves to a predicate over the
// venues table: venues carry the tenant_id column inline, shows reach it
// through their venue, and ticket offers through their show's venue.
// Queries therefore always join down to a venues alias "v" and append
// the fragment rendered here. Centralizing the predicate in one helper
// keeps the isolation rule auditable: a repository query that does not
// call tenantCond (or go through a row already resolved by one that
// does) is a bug.

// Join fragments shared by the scoped queries. Shows join their venue;
// offers join their show and its venue.
const (
	joinShowVenue      = ` JOIN venues v ON v.id = s.venue_id`
	joinOfferShowVenue = ` JOIN shows s ON s.id = o.show_id JOIN venues v ON v.id = s.venue_id`
)

// tenantCond renders a tenant scope into a SQL condition over the venues
// alias "v". Admin scopes render to nothing: no rows are hidden. Tenant
// scopes append an equality on v.tenant_id. The fragment starts with
// " AND" so it can be concatenated after an existing WHERE clause.
func tenantCond(sc tenant.Scope) (string, []any) {
	if sc.IsAdmin() {
		return "", nil
	}
	return " AND v.tenant_id = ?", []any{sc.TenantID()}
}
