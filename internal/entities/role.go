package entities

// Role is the coarse privilege tier assigned to a user
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
)

// ParseRole maps a stored role value to a Role.
// Unknown or empty values fall back to RoleUser (least privilege).
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleDeveloper, RoleAdmin, RoleUser:
		return Role(s)
	default:
		return RoleUser
	}
}

// Valid reports whether the role is one of the known tiers
func (r Role) Valid() bool {
	switch r {
	case RoleDeveloper, RoleAdmin, RoleUser:
		return true
	}
	return false
}
