package shared

import (
	"context"

	"github.com/google/uuid"
)

// Principal describes the authenticated caller of a request.
type Principal struct {
	UserID  uuid.UUID
	Email   string
	Roles   []string
	Service bool
}

// HasRole reports whether the principal carries role. The service principal carries every role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	if p.Service {
		return true
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ActorID returns the principal's user id or uuid.Nil.
func ActorID(ctx context.Context) uuid.UUID {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.UserID
	}
	return uuid.Nil
}
