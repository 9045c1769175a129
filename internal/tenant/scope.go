// Package tenant defines the tenant scope value threaded through every
// data-access call. A Scope is either bound to a single tenant or marks
// unrestricted administrative access. It is an explicit parameter rather
// than ambient request state so the isolation predicate stays auditable:
// every repository method signature shows whether it is scoped.
package tenant

import "fmt"

// Scope identifies whose rows a data access may touch. The zero value is
// deliberately unusable (not admin, tenant id 0 matches no row) so a
// forgotten scope fails closed.
type Scope struct {
	tenantID uint64
	admin    bool
}

// ForTenant returns a scope restricted to the given tenant id.
func ForTenant(id uint64) Scope {
	return Scope{tenantID: id}
}

// Admin returns the unrestricted scope used by provisioning and
// administrative endpoints. No tenant predicate is applied.
func Admin() Scope {
	return Scope{admin: true}
}

// IsAdmin reports whether the scope is unrestricted.
func (s Scope) IsAdmin() bool { return s.admin }

// TenantID returns the bound tenant id. It is zero for admin scopes.
func (s Scope) TenantID() uint64 { return s.tenantID }

// String is used in log lines only.
func (s Scope) String() string {
	if s.admin {
		return "scope(admin)"
	}
	return fmt.Sprintf("scope(tenant=%d)", s.tenantID)
}
