package permission

// Payload is the raw permission payload of the permission service.
type Payload struct {
	Permissions []string            `json:"permissions"`
	Modules     []string            `json:"modules,omitempty"`
	Submodules  map[string][]string `json:"submodules,omitempty"`
	Role        string              `json:"role,omitempty"`
}

// FromPayload builds a Set from a server payload, normalizing every permission under cfg.
// Unparseable permissions are dropped. A nil payload yields an empty set.
func FromPayload(p *Payload, cfg FormatConfig) Set {
	if p == nil {
		return NewSet("")
	}

	set := NewSet(p.Role)

	for _, raw := range p.Permissions {
		c, ok := Normalize(raw, cfg)
		if !ok {
			continue
		}

		set.Grant(c.Module, c.Action)
	}

	for _, module := range p.Modules {
		if module != "" {
			set.Modules[module] = struct{}{}
		}
	}

	for module, subs := range p.Submodules {
		for _, sub := range subs {
			set.AddSubmodule(module, sub)
		}
	}

	return set
}

// Merge unions server into fallback and returns a new Set.
// The result is additive only; revocation is the backend's job on each call.
// Role and Roles prefer the server side when present.
func Merge(fallback, server Set) Set {
	role := fallback.Role
	if server.Role != "" {
		role = server.Role
	}

	out := NewSet(role)

	for _, s := range []Set{fallback, server} {
		for perm := range s.Permissions {
			out.Permissions[perm] = struct{}{}
		}

		for module := range s.Modules {
			out.Modules[module] = struct{}{}
		}

		for module, subs := range s.Submodules {
			for sub := range subs {
				out.AddSubmodule(module, sub)
			}
		}
	}

	out.Roles = mergeRoles(fallback.Roles, server.Roles)

	return out
}

func mergeRoles(a, b []RoleRecord) []RoleRecord {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	seen := make(map[RoleRecord]bool, len(a)+len(b))
	out := make([]RoleRecord, 0, len(a)+len(b))

	for _, r := range append(append([]RoleRecord(nil), a...), b...) {
		if seen[r] {
			continue
		}

		seen[r] = true
		out = append(out, r)
	}

	return out
}
