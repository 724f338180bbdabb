package permission

import "strings"

// Role is the coarse role carried by an identity.
// Only the values listed below are recognised; anything else resolves to RoleUnknown.
type Role string

const (
	// RoleSuperAdmin is the platform-wide administrator.
	RoleSuperAdmin Role = "super_admin"
	// RoleAdmin is an organization administrator.
	RoleAdmin Role = "admin"
	// RoleManagement is the organization management role.
	RoleManagement Role = "management"
	// RoleFinanceManager manages finance and accounting.
	RoleFinanceManager Role = "finance_manager"
	// RoleSalesManager manages sales and crm.
	RoleSalesManager Role = "sales_manager"
	// RoleInventoryManager manages inventory, products and procurement.
	RoleInventoryManager Role = "inventory_manager"
	// RoleHRManager manages human resources.
	RoleHRManager Role = "hr_manager"
	// RoleServiceManager manages service operations.
	RoleServiceManager Role = "service_manager"
	// RoleUser is the default role for regular users.
	RoleUser Role = "user"
	// RoleEmployee is the default role for employees.
	RoleEmployee Role = "employee"
	// RoleUnknown is used for any role string not listed above.
	RoleUnknown Role = ""
)

// roleClass groups roles by the fallback policy they receive.
type roleClass int

const (
	classUnknown roleClass = iota
	classPrivileged
	classDomainManager
	classBaseline
)

// KnownRoles returns every role of the closed enumeration.
func KnownRoles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleAdmin,
		RoleManagement,
		RoleFinanceManager,
		RoleSalesManager,
		RoleInventoryManager,
		RoleHRManager,
		RoleServiceManager,
		RoleUser,
		RoleEmployee,
	}
}

// ParseRole maps a raw role string onto the enumeration.
func ParseRole(raw string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))

	for _, known := range KnownRoles() {
		if r == known {
			return r
		}
	}

	return RoleUnknown
}

// String implements fmt.Stringer.
func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}

	return string(r)
}

// IsPrivileged reports whether the role receives the broad wildcard fallback.
func (r Role) IsPrivileged() bool {
	return r.class() == classPrivileged
}

func (r Role) class() roleClass {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManagement:
		return classPrivileged
	case RoleFinanceManager, RoleSalesManager, RoleInventoryManager, RoleHRManager, RoleServiceManager:
		return classDomainManager
	case RoleUser, RoleEmployee:
		return classBaseline
	case RoleUnknown:
		return classUnknown
	}

	return classUnknown
}
