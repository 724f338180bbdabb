package permission

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, role := range KnownRoles() {
		assert.Equal(t, role, ParseRole(string(role)))
	}

	assert.Equal(t, RoleSalesManager, ParseRole("  Sales_Manager "))
	assert.Equal(t, RoleUnknown, ParseRole("pirate"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
	assert.Equal(t, "unknown", RoleUnknown.String())
}

func TestKnownRolesHavePolicy(t *testing.T) {
	for _, role := range KnownRoles() {
		assert.NotEqual(t, classUnknown, role.class(), "role %s has no explicit fallback policy", role)

		if role.class() == classDomainManager {
			assert.NotEmpty(t, managerGrants[role], "manager role %s has no curated grants", role)
		}
	}
}

func TestFallback(t *testing.T) {
	cfg := DefaultFormatConfig()

	t.Run("privileged roles get every module wildcard", func(t *testing.T) {
		for _, role := range []Role{RoleSuperAdmin, RoleAdmin, RoleManagement} {
			set := Fallback(role)
			assert.Len(t, set.Permissions, len(KnownModules()))

			for _, module := range KnownModules() {
				assert.True(t, set.Has(module+".*"), "%s lacks %s.*", role, module)
			}
		}
	})

	t.Run("managers get dashboard and a report", func(t *testing.T) {
		for role := range managerGrants {
			set := Fallback(role)
			assert.True(t, set.Has("dashboard.view"), role)

			var hasReport bool

			for perm := range set.Permissions {
				if c, ok := Normalize(perm, cfg); ok && c.Module == ModuleReports {
					hasReport = true
				}
			}

			assert.True(t, hasReport, "%s lacks a reporting permission", role)
		}
	})

	t.Run("baseline and unknown are view only", func(t *testing.T) {
		for _, role := range []Role{RoleUser, RoleEmployee, RoleUnknown} {
			set := Fallback(role)
			r := NewResolver(set, cfg, false)

			for _, module := range KnownModules() {
				assert.True(t, r.HasPermission(module, ActionView))
				assert.False(t, r.HasPermission(module, ActionUpdate))
			}
		}
	})

	t.Run("sales manager scope", func(t *testing.T) {
		r := NewResolver(Fallback(RoleSalesManager), cfg, false)

		assert.True(t, r.HasPermission(ModuleSales, ActionView))
		assert.True(t, r.HasPermission(ModuleCRM, ActionUpdate))
		assert.False(t, r.HasPermission(ModuleHR, ActionView))
		assert.False(t, r.HasPermission(ModuleFinance, ActionView))
	})
}

func TestNormalize(t *testing.T) {
	cfg := DefaultFormatConfig()

	testCases := []struct {
		raw    string
		module string
		action string
		ok     bool
	}{
		{"inventory.read", "inventory", "read", true},
		{"inventory_read", "inventory", "read", true},
		{"inventory:read", "inventory", "read", true},
		{"master_data_read", "master_data", "read", true},
		{"master_data.read", "master_data", "read", true},
		{"master_data:read", "master_data", "read", true},
		{"crm.commission.view", "crm.commission", "view", true},
		{"Sales.View", "sales", "view", true},
		{"sales_*", "sales", "*", true},
		{"sales", "", "", false},
		{"", "", "", false},
		{"sales.", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			c, ok := Normalize(tc.raw, cfg)
			assert.Equal(t, tc.ok, ok)

			if tc.ok {
				assert.Equal(t, tc.module, c.Module)
				assert.Equal(t, tc.action, c.Action)
			}
		})
	}
}

func TestNormalize_PrimaryFormat(t *testing.T) {
	cfg := FormatConfig{PrimaryFormat: FormatColon, Compatibility: false}

	_, ok := Normalize("inventory.read", cfg)
	assert.False(t, ok)

	c, ok := Normalize("inventory:read", cfg)
	require.True(t, ok)
	assert.Equal(t, "inventory.read", c.String())

	cfg.Compatibility = true
	cfg.LegacyFormats = []Format{FormatDotted}

	_, ok = Normalize("inventory.read", cfg)
	assert.True(t, ok)

	_, ok = Normalize("inventory_read", cfg)
	assert.False(t, ok, "underscore is not listed as legacy")
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("Dot")
	assert.True(t, ok)
	assert.Equal(t, FormatDotted, f)

	_, ok = ParseFormat("slash")
	assert.False(t, ok)
}

func TestFromPayload(t *testing.T) {
	set := FromPayload(&Payload{
		Permissions: []string{"sales.view", "hr_update", "garbage"},
		Modules:     []string{"sales", ""},
		Submodules:  map[string][]string{"crm": {"leads"}},
		Role:        "sales_manager",
	}, DefaultFormatConfig())

	assert.Equal(t, []string{"hr.update", "sales.view"}, set.PermissionList())
	assert.Equal(t, []string{"hr", "sales"}, set.ModuleList())
	assert.Equal(t, map[string][]string{"crm": {"leads"}}, set.SubmoduleList())
	assert.Equal(t, "sales_manager", set.Role)

	empty := FromPayload(nil, DefaultFormatConfig())
	assert.Empty(t, empty.Permissions)
}

func TestMerge(t *testing.T) {
	cfg := DefaultFormatConfig()
	fallback := Fallback(RoleSalesManager)
	server := FromPayload(&Payload{
		Permissions: []string{"hr.view", "sales.view"},
		Submodules:  map[string][]string{"crm": {"leads"}, "sales": {"quotes"}},
	}, cfg)
	server.Roles = []RoleRecord{{ID: 3, Name: "Regional Sales"}}

	merged := Merge(fallback, server)

	t.Run("additive", func(t *testing.T) {
		for perm := range fallback.Permissions {
			assert.True(t, merged.Has(perm))
		}

		assert.True(t, merged.Has("hr.view"))
		assert.True(t, merged.HasModule("hr"))
		assert.Equal(t, []RoleRecord{{ID: 3, Name: "Regional Sales"}}, merged.Roles)
		assert.Equal(t, string(RoleSalesManager), merged.Role)
	})

	t.Run("submodules union per key", func(t *testing.T) {
		fb := NewSet("x")
		fb.AddSubmodule("crm", "settings")

		sv := NewSet("")
		sv.AddSubmodule("crm", "leads")
		sv.AddSubmodule("sales", "quotes")

		got := Merge(fb, sv).SubmoduleList()
		assert.Equal(t, map[string][]string{"crm": {"leads", "settings"}, "sales": {"quotes"}}, got)
	})

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, merged, Merge(fallback, merged))
	})

	t.Run("server role wins", func(t *testing.T) {
		sv := NewSet("admin")
		assert.Equal(t, "admin", Merge(fallback, sv).Role)
	})
}

func TestFormatConfig_Sanitize(t *testing.T) {
	var cfg FormatConfig

	require.NoError(t, json.Unmarshal([]byte(`{
		"primary_format": "Dot",
		"compatibility": true,
		"legacy_formats": ["_", "slash", "colon"],
		"hierarchy_enabled": true,
		"version": "2"
	}`), &cfg))

	cfg = cfg.Sanitize()
	assert.Equal(t, FormatDotted, cfg.PrimaryFormat)
	assert.Equal(t, []Format{FormatUnderscore, FormatColon}, cfg.LegacyFormats)
	assert.Equal(t, "2", cfg.Version)

	unknown := FormatConfig{PrimaryFormat: "pipe"}.Sanitize()
	assert.Equal(t, FormatDotted, unknown.PrimaryFormat)
	assert.Empty(t, unknown.LegacyFormats)
}
