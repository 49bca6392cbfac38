package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_OwnerPrefersUID(t *testing.T) {
	scope, ok := Resolve(Identity{UID: "u-1", Email: "Owner@Example.com", Role: "student"}, Identity{})
	require.True(t, ok)
	assert.Equal(t, RoleOwner, scope.Kind)
	assert.Equal(t, "uid:u-1", scope.Key)
	assert.Equal(t, "owner@example.com", scope.Email)
}

func TestResolve_OwnerFallsBackToEmail(t *testing.T) {
	scope, ok := Resolve(Identity{Email: "owner@example.com", Role: "student"}, Identity{})
	require.True(t, ok)
	assert.Equal(t, "email:owner@example.com", scope.Key)
}

func TestResolve_OwnerWithoutIdentityFails(t *testing.T) {
	_, ok := Resolve(Identity{Role: "student"}, Identity{})
	assert.False(t, ok)
}

func TestResolve_UsesFallbackProfile(t *testing.T) {
	scope, ok := Resolve(Identity{}, Identity{UID: "u-2", Email: "cached@example.com", Role: "student"})
	require.True(t, ok)
	assert.Equal(t, "uid:u-2", scope.Key)
}

func TestResolve_HandlerRequiresEmail(t *testing.T) {
	_, ok := Resolve(Identity{UID: "h-1", Role: "staff"}, Identity{})
	assert.False(t, ok)

	scope, ok := Resolve(Identity{Email: "Handler@Example.com", Role: "Staff"}, Identity{})
	require.True(t, ok)
	assert.Equal(t, RoleHandler, scope.Kind)
	assert.Equal(t, "role:staff::handler@example.com", scope.Key)
}

func TestResolve_KasamaIsHandlerClass(t *testing.T) {
	scope, ok := Resolve(Identity{Email: "k@example.com", Role: "kasama"}, Identity{})
	require.True(t, ok)
	assert.Equal(t, RoleHandler, scope.Kind)
	assert.True(t, IsHandlerClass("kasama"))
	assert.False(t, IsHandlerClass("admin"))
}

func TestResolve_AdminKeyPreferenceOrder(t *testing.T) {
	scope, ok := Resolve(Identity{UID: "a-1", Email: "a@example.com", Role: "admin"}, Identity{})
	require.True(t, ok)
	assert.Equal(t, "uid:a-1", scope.Key)

	scope, ok = Resolve(Identity{Email: "a@example.com", Role: "admin"}, Identity{})
	require.True(t, ok)
	assert.Equal(t, "email:a@example.com", scope.Key)

	scope, ok = Resolve(Identity{Role: "admin"}, Identity{})
	require.True(t, ok)
	assert.Equal(t, "role:admin", scope.Key)
	assert.Equal(t, RoleAdministrator, scope.Kind)
}

func TestResolve_UnrecognizedRoleFails(t *testing.T) {
	_, ok := Resolve(Identity{UID: "x", Email: "x@example.com", Role: "janitor"}, Identity{})
	assert.False(t, ok)
	_, ok = Resolve(Identity{}, Identity{})
	assert.False(t, ok)
}

func TestResolve_StableForSameViewer(t *testing.T) {
	ident := Identity{UID: "u-1", Email: "o@example.com", Role: "student"}
	a, ok := Resolve(ident, Identity{})
	require.True(t, ok)
	b, ok := Resolve(ident, Identity{})
	require.True(t, ok)
	assert.Equal(t, a, b)
}

func TestStreamFilter_PerRole(t *testing.T) {
	owner, _ := Resolve(Identity{UID: "u-1", Role: "student"}, Identity{})
	f := owner.StreamFilter()
	assert.Equal(t, "userId", f.Field)
	assert.Equal(t, "u-1", f.Value)

	ownerByEmail, _ := Resolve(Identity{Email: "o@example.com", Role: "student"}, Identity{})
	f = ownerByEmail.StreamFilter()
	assert.Equal(t, "userEmail", f.Field)
	assert.Equal(t, "o@example.com", f.Value)

	handler, _ := Resolve(Identity{Email: "h@example.com", Role: "staff"}, Identity{})
	f = handler.StreamFilter()
	assert.Equal(t, "assignedRole", f.Field)
	assert.Equal(t, "staff", f.Value)

	admin, _ := Resolve(Identity{Role: "admin"}, Identity{})
	f = admin.StreamFilter()
	assert.Equal(t, "", f.Field)
	assert.Equal(t, "submissionDate", f.OrderBy)
	assert.True(t, f.Descending)
}

func TestPersistenceKeys_AreNamespacedPerScope(t *testing.T) {
	a, _ := Resolve(Identity{UID: "u-1", Role: "student"}, Identity{})
	b, _ := Resolve(Identity{UID: "u-2", Role: "student"}, Identity{})

	assert.NotEqual(t, a.LedgerKey(), b.LedgerKey())
	assert.NotEqual(t, a.SeenKey(), b.SeenKey())
	assert.NotEqual(t, a.DismissedKey(), b.DismissedKey())
	assert.NotEqual(t, a.LedgerKey(), a.SeenKey())
}
