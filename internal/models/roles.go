package models

import "fmt"

// Role is the closed set of application roles. It is stored as a string column
// but must only ever hold one of the four constants below; ParseRole is the
// single entry point for untrusted input.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCaseManager Role = "case_manager"
	RoleDonor       Role = "donor"
	RoleFamily      Role = "family"
)

// ParseRole converts untrusted input into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCaseManager:
		return RoleCaseManager, nil
	case RoleDonor:
		return RoleDonor, nil
	case RoleFamily:
		return RoleFamily, nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCaseManager, RoleDonor, RoleFamily:
		return true
	default:
		return false
	}
}

// Principal is the resolved identity making a request. It is threaded
// explicitly into every core operation; nothing reads ambient session state.
type Principal struct {
	ProfileID string `json:"profile_id"`
	Role      Role   `json:"role"`
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
