package auth

import "errors"

// Guard failures. The HTTP layer maps these to 401 and 403.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
)

// Guard enforces role and ownership requirements. The checks are pure
// predicates; an endpoint calls whichever subset it needs.
type Guard struct {
	// adminOverride controls, per resource kind, whether admins bypass
	// the ownership check.
	adminOverride map[string]bool
}

// NewGuard creates a guard with the given per-resource-kind admin
// override policy.
func NewGuard(adminOverride map[string]bool) *Guard {
	override := make(map[string]bool, len(adminOverride))
	for kind, allowed := range adminOverride {
		override[kind] = allowed
	}
	return &Guard{adminOverride: override}
}

// RequireAuthenticated fails when no principal was resolved.
func (g *Guard) RequireAuthenticated(p *Principal) error {
	if p == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin fails when the principal is absent or not an admin.
func (g *Guard) RequireAdmin(p *Principal) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireOwnership fails unless the principal owns the resource, or is an
// admin and the resource kind permits the admin override.
func (g *Guard) RequireOwnership(p *Principal, ownerID int64, resourceKind string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.ID == ownerID {
		return nil
	}
	if p.IsAdmin() && g.adminOverride[resourceKind] {
		return nil
	}
	return ErrForbidden
}
