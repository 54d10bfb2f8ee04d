package models

import "strings"

// Role is one of the fixed set of application roles. The set is closed:
// anything outside it fails ParseRole.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
)

// Actor labels used in audit entries for non-user actors. They are not
// assignable roles.
const (
	ActorRoleSystem  = "system"
	ActorRoleUnknown = "unknown"
)

// ParseRole normalizes s (case-insensitive, trimmed) and returns the matching
// Role. ok is false for anything outside the fixed set.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleDoctor:
		return RoleDoctor, true
	case RoleReceptionist:
		return RoleReceptionist, true
	}
	return "", false
}

func (r Role) String() string {
	return string(r)
}

// Matches reports whether r equals other ignoring case.
func (r Role) Matches(other string) bool {
	return strings.EqualFold(string(r), strings.TrimSpace(other))
}
