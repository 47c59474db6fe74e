package entity

// Role is the role carried by an authenticated identity
type Role string

const (
	RolePatient Role = "patient"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// IsStaff reports whether the role belongs to clinic personnel
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Access is the role requirement of a gated operation
type Access int

const (
	AccessAny Access = iota
	AccessPatient
	AccessStaff
	AccessAdmin
	AccessStaffOrAdmin
)

// Allows reports whether role satisfies the requirement. AccessAny accepts any
// authenticated role.
func (a Access) Allows(role Role) bool {
	switch a {
	case AccessAny:
		return role == RolePatient || role.IsStaff()
	case AccessPatient:
		return role == RolePatient
	case AccessStaff:
		return role == RoleStaff
	case AccessAdmin:
		return role == RoleAdmin
	case AccessStaffOrAdmin:
		return role.IsStaff()
	default:
		return false
	}
}

func (a Access) String() string {
	switch a {
	case AccessAny:
		return "any"
	case AccessPatient:
		return "patient"
	case AccessStaff:
		return "staff"
	case AccessAdmin:
		return "admin"
	case AccessStaffOrAdmin:
		return "staff,admin"
	default:
		return "unknown"
	}
}

// Identity is the authenticated caller of a request
type Identity struct {
	ID   int64
	Name string
	Role Role
}
