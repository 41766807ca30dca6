package domain

import (
	"errors"
	"strings"
)

// ErrInvalidRole is returned for a role name other than admin or member.
var ErrInvalidRole = errors.New("invalid role")

// Role is the caller's privilege level. The zero value is a member.
type Role struct {
	admin bool
}

var (
	RoleMember = Role{}
	RoleAdmin  = Role{admin: true}
)

// ParseRole accepts "admin" or "member", case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "member":
		return RoleMember, nil
	default:
		return Role{}, ErrInvalidRole
	}
}

// IsAdmin reports whether the role sees every user's tasks.
func (r Role) IsAdmin() bool { return r.admin }

func (r Role) String() string {
	if r.admin {
		return "admin"
	}
	return "member"
}
