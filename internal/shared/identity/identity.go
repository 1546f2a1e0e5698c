// Package identity describes the caller of an operation once the transport
// layer has verified its bearer token.
package identity

import "strings"

// Role is the authorization role carried by a user and by its tokens.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole normalizes a role name. Unknown names are rejected.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

// Identity is the resolved caller. The zero value is the anonymous caller.
type Identity struct {
	UserID uint
	Email  string
	Role   Role
}

// Anonymous is the identity used when no valid token accompanies a request.
var Anonymous = Identity{}

// IsAnonymous reports whether no user is attached to the identity.
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (i Identity) IsAdmin() bool {
	return !i.IsAnonymous() && i.Role == RoleAdmin
}

// CallerID returns a pointer to the user id, or nil for anonymous callers.
// Read-only projections use it to compute per-caller flags.
func (i Identity) CallerID() *uint {
	if i.IsAnonymous() {
		return nil
	}
	id := i.UserID
	return &id
}
