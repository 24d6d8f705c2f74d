package model

// Role represents a single role that can be granted to a user.
type Role string

// The full set of roles recognized by this service.
const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// ParseRole returns the role corresponding to a role name, accepting the legacy
// `ROLE_*` names used by the authentication service.
func ParseRole(name string) (Role, bool) {
	switch name {
	case "user", "ROLE_USER":
		return RoleUser, true
	case "editor", "ROLE_EDITOR":
		return RoleEditor, true
	case "admin", "ROLE_ADMIN":
		return RoleAdmin, true
	}
	return "", false
}

// UserInfo represents the acting identity of a request: the authenticated user ID
// plus the set of roles granted to that user.
type UserInfo struct {
	UserID string
	Roles  []Role
}

// HasRole determines whether or not the user holds the given role.
func (u UserInfo) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
