package permission

// hierarchy maps a parent module to the modules it implies.
// The relation is one-directional: a child grant never implies its parent.
var hierarchy = map[string][]string{ //nolint:gochecknoglobals
	ModuleMasterData: {ModuleVendors, ModuleCustomers, ModuleProducts, ModuleInventory},
	ModuleInventory:  {ModuleProcurement},
	ModuleFinance:    {ModuleAccounting, ModuleVouchers},
	ModuleCRM:        {ModuleMarketing},
}

// adminGrants maps a module to submodules that become fully accessible
// once the parent holds admin-level access ("<module>.admin" or "<module>.*").
var adminGrants = map[string][]string{ //nolint:gochecknoglobals
	ModuleCRM:      {"crm.settings", "crm.commission", "crm.leads"},
	ModuleSettings: {"settings.organization", "settings.users", "settings.roles"},
}

// parents is the inverted hierarchy, built once.
var parents = invert(hierarchy) //nolint:gochecknoglobals

func invert(h map[string][]string) map[string][]string {
	out := make(map[string][]string)

	for parent, children := range h {
		for _, child := range children {
			out[child] = append(out[child], parent)
		}
	}

	return out
}

// Hierarchy returns a copy of the parent to children relation.
func Hierarchy() map[string][]string {
	out := make(map[string][]string, len(hierarchy))
	for parent, children := range hierarchy {
		out[parent] = append([]string(nil), children...)
	}

	return out
}

// Ancestors returns every module that transitively implies module, nearest first.
// Modules absent from the table have no ancestors.
func Ancestors(module string) []string {
	var (
		out  []string
		seen = map[string]bool{module: true}
		next = parents[module]
	)

	for len(next) > 0 {
		var level []string

		for _, p := range next {
			if seen[p] {
				continue
			}

			seen[p] = true
			out = append(out, p)
			level = append(level, parents[p]...)
		}

		next = level
	}

	return out
}

// adminParent returns the module whose admin-level access unlocks submodule.
func adminParent(submodule string) (string, bool) {
	for parent, subs := range adminGrants {
		for _, s := range subs {
			if s == submodule {
				return parent, true
			}
		}
	}

	return "", false
}
