package permission

// Resolver answers point queries against one resolved Set.
// A Resolver is read-only and safe for concurrent use.
type Resolver struct {
	set        Set
	format     FormatConfig
	superAdmin bool
}

// NewResolver creates a resolver. superAdmin short-circuits every check to true.
func NewResolver(set Set, format FormatConfig, superAdmin bool) *Resolver {
	return &Resolver{
		set:        set,
		format:     format,
		superAdmin: superAdmin,
	}
}

// Set returns the underlying permission set.
func (r *Resolver) Set() Set {
	return r.set
}

// Format returns the format configuration in effect.
func (r *Resolver) Format() FormatConfig {
	return r.format
}

// IsSuperAdmin reports whether the resolver short-circuits to true.
func (r *Resolver) IsSuperAdmin() bool {
	return r.superAdmin
}

// HasPermission checks module and action as a split pair.
func (r *Resolver) HasPermission(module, action string) bool {
	if r.superAdmin {
		return true
	}

	if r.grants(module, action) {
		return true
	}

	if !r.format.HierarchyEnabled {
		return false
	}

	for _, ancestor := range Ancestors(module) {
		if r.grants(ancestor, action) {
			return true
		}
	}

	if parent, ok := adminParent(module); ok {
		if r.grants(parent, ActionAdmin) {
			return true
		}
	}

	return false
}

// Check evaluates a full permission string in any accepted format.
// Unparseable strings are never granted, except for super admins.
func (r *Resolver) Check(perm string) bool {
	if r.superAdmin {
		return true
	}

	c, ok := Normalize(perm, r.format)
	if !ok {
		return false
	}

	return r.HasPermission(c.Module, c.Action)
}

// HasAnyPermission reports whether at least one permission is granted. An empty list is false.
func (r *Resolver) HasAnyPermission(perms ...string) bool {
	if len(perms) == 0 {
		return false
	}

	for _, perm := range perms {
		if r.Check(perm) {
			return true
		}
	}

	return false
}

// HasAllPermissions reports whether every permission is granted. An empty list is true.
func (r *Resolver) HasAllPermissions(perms ...string) bool {
	if len(perms) == 0 {
		return true
	}

	for _, perm := range perms {
		if !r.Check(perm) {
			return false
		}
	}

	return true
}

// grants checks the exact permission and the module wildcard.
func (r *Resolver) grants(module, action string) bool {
	if r.set.Has(Canonical{Module: module, Action: action}.String()) {
		return true
	}

	return r.set.Has(Canonical{Module: module, Action: ActionAll}.String())
}
