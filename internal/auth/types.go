// Package auth provides authentication and authorization for the platform:
// bearer-credential resolution into a per-request Principal, and the role
// and ownership guards the HTTP layer composes per endpoint.
package auth

import "gatehouse/internal/constants"

// User represents an account as exposed to the rest of the application.
// The password hash lives only in the database layer.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role. The role column
// is authoritative; there is no email-pattern fallback.
func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}

// Principal is the resolved identity of one authenticated request.
// It is derived from a verified credential plus a repository lookup and
// lives only for the duration of the request.
type Principal struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == constants.RoleAdmin
}

// UserLookup is the narrow repository surface the resolver needs.
// Implementations return (nil, nil) when no account exists.
type UserLookup interface {
	FindUserByID(id int64) (*User, error)
}
