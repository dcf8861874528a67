package auth

import (
	"context"
	"net/http"
	"strings"

	"gatehouse/internal/constants"
	"gatehouse/internal/logger"
	"gatehouse/internal/token"
)

// contextKey is an unexported type for context keys in this package.
type contextKey int

const (
	principalContextKey contextKey = iota
)

// Middleware resolves the request credential into a Principal.
type Middleware struct {
	codec  *token.Codec
	users  UserLookup
	logger *logger.Logger
}

// NewMiddleware creates the credential-resolving middleware.
func NewMiddleware(codec *token.Codec, users UserLookup, log *logger.Logger) *Middleware {
	return &Middleware{codec: codec, users: users, logger: log}
}

// Authenticate extracts and validates the credential from the request and
// sets the Principal on the context. It always calls next and never blocks
// unauthenticated requests. Handlers that require identity use the guards.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := m.resolvePrincipal(r)
		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolvePrincipal attempts to produce a Principal from the request.
// All failure modes (no credential, forged or expired credential, account
// deleted after issuance) collapse to nil so callers cannot tell them apart.
func (m *Middleware) resolvePrincipal(r *http.Request) *Principal {
	encoded := CredentialFromRequest(r)
	if encoded == "" {
		return nil
	}

	userID, _, err := m.codec.Verify(encoded)
	if err != nil {
		m.logger.Debug("Auth: credential rejected: %v", err)
		return nil
	}

	user, err := m.users.FindUserByID(userID)
	if err != nil {
		m.logger.Error("Auth: user lookup failed for id %d: %v", userID, err)
		return nil
	}
	if user == nil {
		m.logger.Debug("Auth: credential subject %d no longer exists", userID)
		return nil
	}

	return &Principal{ID: user.ID, Role: user.Role}
}

// CredentialFromRequest extracts the encoded credential from the request.
// The Authorization header is checked first and wins over the cookie when
// both channels carry a value.
func CredentialFromRequest(r *http.Request) string {
	if h := r.Header.Get(constants.HeaderAuthorization); h != "" {
		if strings.HasPrefix(h, constants.AuthBearerPrefix) {
			if tok := strings.TrimPrefix(h, constants.AuthBearerPrefix); tok != "" {
				return tok
			}
		}
	}

	if c, err := r.Cookie(constants.AuthCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}

// GetPrincipal retrieves the resolved principal from the request context.
// Returns nil for unauthenticated requests.
func GetPrincipal(r *http.Request) *Principal {
	principal, _ := r.Context().Value(principalContextKey).(*Principal)
	return principal
}

// WithPrincipal returns a context carrying the given principal.
// Used by tests and non-HTTP callers.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}
