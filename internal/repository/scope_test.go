package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/stagepass/internal/tenant"
)

// The tenant predicate is the isolation mechanism for every entity, so
// its rendering is pinned down here for both scopes and both ownership
// chains (venue-joined and acts-inline).

func TestTenantCondForTenantScope(t *testing.T) {
	cond, args := tenantCond(tenant.ForTenant(7))

	assert.Equal(t, " AND v.tenant_id = ?", cond)
	require.Len(t, args, 1)
	assert.Equal(t, uint64(7), args[0])
}

func TestTenantCondForAdminScope(t *testing.T) {
	cond, args := tenantCond(tenant.Admin())

	assert.Empty(t, cond)
	assert.Empty(t, args)
}

func TestTenantCondForZeroScope(t *testing.T) {
	// The zero scope is not admin: it still renders a predicate, bound
	// to tenant 0, which matches nothing.
	cond, args := tenantCond(tenant.Scope{})

	assert.Equal(t, " AND v.tenant_id = ?", cond)
	require.Len(t, args, 1)
	assert.Equal(t, uint64(0), args[0])
}

func TestActTenantCond(t *testing.T) {
	cond, args := actTenantCond(tenant.ForTenant(3))
	assert.Equal(t, " AND a.tenant_id = ?", cond)
	require.Len(t, args, 1)
	assert.Equal(t, uint64(3), args[0])

	cond, args = actTenantCond(tenant.Admin())
	assert.Empty(t, cond)
	assert.Empty(t, args)
}

func TestNewPublicID(t *testing.T) {
	a, err := NewPublicID()
	require.NoError(t, err)
	b, err := NewPublicID()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
