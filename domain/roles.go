package domain

import "strings"

// Role is the closed set of privileges a session can carry. The
// server-reported role string is decoded exactly once, at the auth
// boundary; everything downstream compares Role values.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a server-reported role string onto the closed enum.
// The comparison is case-insensitive; anything that is not an admin
// role degrades to RoleUser.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// IsAdmin reports whether the role carries elevated privileges.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Subject is the casbin subject for this role.
func (r Role) Subject() string { return "role_" + string(r) }
