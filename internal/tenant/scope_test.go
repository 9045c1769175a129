package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForTenant(t *testing.T) {
	sc := ForTenant(42)

	assert.False(t, sc.IsAdmin())
	assert.Equal(t, uint64(42), sc.TenantID())
	assert.Equal(t, "scope(tenant=42)", sc.String())
}

func TestAdmin(t *testing.T) {
	sc := Admin()

	assert.True(t, sc.IsAdmin())
	assert.Equal(t, uint64(0), sc.TenantID())
	assert.Equal(t, "scope(admin)", sc.String())
}

func TestZeroValueFailsClosed(t *testing.T) {
	// A forgotten scope must not behave like admin: it is a tenant
	// scope for tenant 0, which matches no rows.
	var sc Scope

	assert.False(t, sc.IsAdmin())
	assert.Equal(t, uint64(0), sc.TenantID())
}
