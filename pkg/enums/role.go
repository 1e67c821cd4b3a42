package enums

// Role is the platform role attached to a user account.
type Role string

const (
	RoleUser       Role = "user"
	RolePublisher  Role = "publisher"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsStaff reports whether the role may act on any order.
func (r Role) IsStaff() bool {
	switch r {
	case RoleModerator, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
