package auth

import "strings"

type requirementKind uint8

const (
	requireAny requirementKind = iota
	requireUnauthenticated
	requireAuthenticated
	requireRoles
)

// Requirement is the access rule attached to a protected operation or view.
type Requirement struct {
	kind  requirementKind
	roles []string
}

var (
	// Any is always allowed.
	Any = Requirement{kind: requireAny}
	// Unauthenticated is allowed only without an active session (e.g. a login view).
	Unauthenticated = Requirement{kind: requireUnauthenticated}
	// Authenticated is allowed for any active session regardless of roles.
	Authenticated = Requirement{kind: requireAuthenticated}
)

// Roles is allowed when the session holds at least one of the given roles.
// An empty set allows nobody.
func Roles(names ...string) Requirement {
	return Requirement{kind: requireRoles, roles: append([]string(nil), names...)}
}

// Allows evaluates the requirement against a session state; active is false
// for anonymous users.
func (r Requirement) Allows(c Context, active bool) bool {
	switch r.kind {
	case requireAny:
		return true
	case requireUnauthenticated:
		return !active
	case requireAuthenticated:
		return active
	case requireRoles:
		if !active {
			return false
		}
		for _, want := range r.roles {
			if c.HasRole(want) {
				return true
			}
		}
	}
	return false
}

func (r Requirement) String() string {
	switch r.kind {
	case requireAny:
		return "any"
	case requireUnauthenticated:
		return "unauthenticated"
	case requireAuthenticated:
		return "authenticated"
	default:
		return "roles(" + strings.Join(r.roles, ",") + ")"
	}
}
