package models

// Role is the enumerated principal role carried in session tokens.
type Role string

const (
	RoleTenant     Role = "tenant"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleTechnician, RoleManager:
		return true
	}
	return false
}

// IsStaff reports whether the role works on work orders rather than filing them.
func (r Role) IsStaff() bool {
	return r == RoleTechnician || r == RoleManager
}
