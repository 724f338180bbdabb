package permission

import "sort"

// RoleRecord is a role assignment as returned by the permission service.
type RoleRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Module      string `json:"module,omitempty"`
}

// Set is the resolved authorization surface of one identity.
// A Set is treated as immutable once built; updates produce a new Set.
type Set struct {
	// Role is the coarse role the set was computed for.
	Role string
	// Roles are the service role assignments of the identity.
	Roles []RoleRecord
	// Permissions holds canonical dotted permission strings.
	Permissions map[string]struct{}
	// Modules holds the accessible top-level module names.
	Modules map[string]struct{}
	// Submodules maps a module to its allowed sub-action names.
	Submodules map[string]map[string]struct{}
}

// NewSet creates an empty set for role.
func NewSet(role string) Set {
	return Set{
		Role:        role,
		Permissions: make(map[string]struct{}),
		Modules:     make(map[string]struct{}),
		Submodules:  make(map[string]map[string]struct{}),
	}
}

// Grant adds a canonical permission and records its module.
func (s *Set) Grant(module, action string) {
	s.Permissions[Canonical{Module: module, Action: action}.String()] = struct{}{}
	if module != "" && module != ActionAll {
		s.Modules[module] = struct{}{}
	}
}

// AddSubmodule records a sub-action under module.
func (s *Set) AddSubmodule(module, sub string) {
	subs, ok := s.Submodules[module]
	if !ok {
		subs = make(map[string]struct{})
		s.Submodules[module] = subs
	}

	subs[sub] = struct{}{}
}

// Has reports whether the exact canonical permission is present.
func (s Set) Has(perm string) bool {
	_, ok := s.Permissions[perm]
	return ok
}

// HasModule reports whether module is listed as accessible.
func (s Set) HasModule(module string) bool {
	_, ok := s.Modules[module]
	return ok
}

// PermissionList returns the permissions sorted.
func (s Set) PermissionList() []string {
	return sortedKeys(s.Permissions)
}

// ModuleList returns the modules sorted.
func (s Set) ModuleList() []string {
	return sortedKeys(s.Modules)
}

// SubmoduleList returns the submodules with sorted values.
func (s Set) SubmoduleList() map[string][]string {
	out := make(map[string][]string, len(s.Submodules))
	for module, subs := range s.Submodules {
		out[module] = sortedKeys(subs)
	}

	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
