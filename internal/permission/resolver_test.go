package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resolverFor(perms []string, cfg FormatConfig) *Resolver {
	return NewResolver(FromPayload(&Payload{Permissions: perms}, cfg), cfg, false)
}

func TestHierarchy_OneDirectional(t *testing.T) {
	cfg := DefaultFormatConfig()

	for parent, children := range Hierarchy() {
		for _, child := range children {
			t.Run(parent+">"+child, func(t *testing.T) {
				fromParent := resolverFor([]string{parent + ".read"}, cfg)
				assert.True(t, fromParent.HasPermission(child, "read"), "parent grant must imply child")

				fromChild := resolverFor([]string{child + ".read"}, cfg)
				assert.False(t, fromChild.HasPermission(parent, "read"), "child grant must not imply parent")
			})
		}
	}
}

func TestHierarchy_Transitive(t *testing.T) {
	r := resolverFor([]string{"master_data.update"}, DefaultFormatConfig())

	assert.True(t, r.HasPermission(ModuleInventory, "update"))
	assert.True(t, r.HasPermission(ModuleProcurement, "update"))
	assert.False(t, r.HasPermission(ModuleProcurement, "delete"))
}

func TestHierarchy_Disabled(t *testing.T) {
	cfg := DefaultFormatConfig()
	cfg.HierarchyEnabled = false

	r := resolverFor([]string{"master_data.read"}, cfg)

	assert.True(t, r.HasPermission(ModuleMasterData, "read"))
	assert.False(t, r.HasPermission(ModuleVendors, "read"))
}

func TestHierarchy_IsolatedModule(t *testing.T) {
	assert.Empty(t, Ancestors("payroll"))

	r := resolverFor([]string{"payroll.read"}, DefaultFormatConfig())
	assert.True(t, r.HasPermission("payroll", "read"))
	assert.False(t, r.HasPermission(ModuleHR, "read"))
}

func TestAdminGrants(t *testing.T) {
	cfg := DefaultFormatConfig()

	testCases := []struct {
		name    string
		perms   []string
		module  string
		action  string
		allowed bool
	}{
		{"crm admin unlocks settings", []string{"crm.admin"}, "crm.settings", "update", true},
		{"crm wildcard unlocks commission", []string{"crm.*"}, "crm.commission", "approve", true},
		{"crm view does not unlock settings", []string{"crm.view"}, "crm.settings", "view", false},
		{"settings submodule does not imply crm", []string{"crm.settings.view"}, ModuleCRM, "view", false},
		{"explicit submodule permission", []string{"crm.commission.view"}, "crm.commission", "view", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := resolverFor(tc.perms, cfg)
			assert.Equal(t, tc.allowed, r.HasPermission(tc.module, tc.action))
		})
	}
}

func TestWildcard(t *testing.T) {
	r := resolverFor([]string{"inventory.*"}, DefaultFormatConfig())

	for _, action := range []string{"read", "view", "create", "delete", "export", "anything-else"} {
		assert.True(t, r.HasPermission(ModuleInventory, action), action)
	}

	assert.False(t, r.HasPermission(ModuleSales, "read"))
}

func TestFormatEquivalence(t *testing.T) {
	compat := DefaultFormatConfig()

	strict := DefaultFormatConfig()
	strict.Compatibility = false

	testCases := []struct {
		name       string
		perm       string
		compatible bool
		strict     bool
	}{
		{"dotted", "inventory.read", true, true},
		{"underscore", "inventory_read", true, false},
		{"colon", "inventory:read", true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.compatible, resolverFor([]string{tc.perm}, compat).HasPermission("inventory", "read"))
			assert.Equal(t, tc.strict, resolverFor([]string{tc.perm}, strict).HasPermission("inventory", "read"))
		})
	}
}

func TestSuperAdminShortCircuit(t *testing.T) {
	r := NewResolver(NewSet("super_admin"), DefaultFormatConfig(), true)

	assert.True(t, r.IsSuperAdmin())
	assert.True(t, r.HasPermission("anything", "anything"))
	assert.True(t, r.HasAllPermissions("hr.delete", "finance.approve", "not a permission"))
	assert.True(t, r.HasAnyPermission("x.y"))
}

func TestAnyAndAll(t *testing.T) {
	r := resolverFor([]string{"sales.view", "crm:update"}, DefaultFormatConfig())

	assert.True(t, r.HasAnyPermission("hr.view", "sales.view"))
	assert.False(t, r.HasAnyPermission("hr.view", "finance.view"))
	assert.False(t, r.HasAnyPermission())

	assert.True(t, r.HasAllPermissions("sales.view", "crm.update"))
	assert.True(t, r.HasAllPermissions("sales_view", "crm:update"))
	assert.False(t, r.HasAllPermissions("sales.view", "hr.view"))
	assert.True(t, r.HasAllPermissions())
}

func TestCheck_Unparseable(t *testing.T) {
	r := resolverFor([]string{"sales.view"}, DefaultFormatConfig())

	assert.False(t, r.Check(""))
	assert.False(t, r.Check("sales"))
	assert.False(t, r.Check(".view"))
	assert.False(t, r.Check("sales."))
}
