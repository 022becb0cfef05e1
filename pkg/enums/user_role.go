package enums

import "fmt"

// UserRole represents the platform-wide role tier. Values are part of the
// frontend contract and must not be translated.
type UserRole string

const (
	UserRoleCliente    UserRole = "cliente"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperadmin UserRole = "superadmin"
)

var validUserRoles = []UserRole{
	UserRoleCliente,
	UserRoleAdmin,
	UserRoleSuperadmin,
}

// roleRank orders the hierarchy: each tier inherits everything below it.
var roleRank = map[UserRole]int{
	UserRoleCliente:    1,
	UserRoleAdmin:      2,
	UserRoleSuperadmin: 3,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Satisfies reports whether an actor holding this role inherits the
// capabilities of the required role. superadmin inherits admin inherits
// cliente.
func (r UserRole) Satisfies(required UserRole) bool {
	actorRank, ok := roleRank[r]
	if !ok {
		return false
	}
	requiredRank, ok := roleRank[required]
	if !ok {
		return false
	}
	return actorRank >= requiredRank
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
