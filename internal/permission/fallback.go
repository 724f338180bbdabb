package permission

// Fallback returns the role-derived default permission set.
//
// The privileged fallback is intentionally broad. It only drives what the client
// offers to display; the backend still authorizes every call, and super-admin only
// operations must be confirmed server-side regardless of this set.
func Fallback(role Role) Set {
	set := NewSet(role.String())

	switch role.class() {
	case classPrivileged:
		for _, module := range KnownModules() {
			set.Grant(module, ActionAll)
		}

		set.AddSubmodule(ModuleCRM, "settings")
		set.AddSubmodule(ModuleCRM, "commission")
	case classDomainManager:
		grantManager(&set, role)
	case classBaseline, classUnknown:
		grantViewOnly(&set)
	}

	return set
}

// managerGrants lists the curated permissions of the domain manager roles.
var managerGrants = map[Role][]Canonical{ //nolint:gochecknoglobals
	RoleFinanceManager: {
		{ModuleFinance, ActionAll},
		{ModuleAccounting, ActionAll},
		{ModuleVouchers, ActionAll},
		{ModuleCustomers, ActionView},
		{ModuleVendors, ActionView},
		{ModuleReports, "finance"},
	},
	RoleSalesManager: {
		{ModuleSales, ActionAll},
		{ModuleCRM, ActionAll},
		{ModuleCustomers, ActionAll},
		{ModuleMarketing, ActionView},
		{ModuleProducts, ActionView},
		{ModuleInventory, ActionView},
		{ModuleReports, "sales"},
	},
	RoleInventoryManager: {
		{ModuleInventory, ActionAll},
		{ModuleProducts, ActionAll},
		{ModuleProcurement, ActionAll},
		{ModuleVendors, ActionAll},
		{ModuleManufacturing, ActionView},
		{ModuleReports, "inventory"},
	},
	RoleHRManager: {
		{ModuleHR, ActionAll},
		{ModuleMail, ActionView},
		{ModuleReports, "hr"},
	},
	RoleServiceManager: {
		{ModuleService, ActionAll},
		{ModuleCustomers, ActionView},
		{ModuleProducts, ActionView},
		{ModuleReports, "service"},
	},
}

func grantManager(set *Set, role Role) {
	set.Grant(ModuleDashboard, ActionView)

	for _, grant := range managerGrants[role] {
		set.Grant(grant.Module, grant.Action)
	}
}

func grantViewOnly(set *Set) {
	for _, module := range KnownModules() {
		set.Grant(module, ActionView)
	}
}
