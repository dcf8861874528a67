package constants

import "time"

// Roles. The role column is the single source of truth for admin
// detection; there is deliberately no email-pattern fallback.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Resource kinds checked by the ownership guard.
const (
	ResourceKindBoard  = "board"
	ResourceKindTicket = "ticket"
)

// AdminOwnershipOverride controls, per resource kind, whether an admin may
// act on a resource owned by someone else. Tickets allow it (admins answer
// other users' tickets); board posts do not.
var AdminOwnershipOverride = map[string]bool{
	ResourceKindTicket: true,
	ResourceKindBoard:  false,
}

// Credential transport
const (
	HeaderAuthorization = "Authorization"
	AuthBearerPrefix    = "Bearer "
	AuthCookieName      = "accessToken"
)

// Auth configuration defaults
const (
	AuthTokenTTL      = 7 * 24 * time.Hour
	AuthTokenTTLHours = 168
	AuthBcryptCost    = 10

	AuthMinPasswordLength = 8
)

// Auth error codes
const (
	ErrCodeAuthRequired           = "AUTH_REQUIRED"
	ErrCodeAuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	ErrCodeAuthForbidden          = "AUTH_FORBIDDEN"
	ErrCodeAuthUserNotFound       = "AUTH_USER_NOT_FOUND"
	ErrCodeAuthUserExists         = "AUTH_USER_ALREADY_EXISTS"
	ErrCodeAuthPasswordTooWeak    = "AUTH_PASSWORD_TOO_WEAK"
)
