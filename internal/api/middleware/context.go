package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

type principalKey struct{}

// Principal is the authenticated caller of a request.
type Principal struct {
	KeyID  uuid.UUID
	Scopes []string
}

// Allows reports whether p may use routes guarded by scope. Admin keys may
// use every route.
func (p Principal) Allows(scope string) bool {
	return slices.Contains(p.Scopes, scope) || slices.Contains(p.Scopes, models.ScopeAdmin)
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored by Authenticate.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// GetKeyID returns the authenticated API key's ID. Handlers use it as the
// owner of the sessions a caller creates.
func GetKeyID(r *http.Request) (uuid.UUID, bool) {
	p, ok := PrincipalFrom(r.Context())
	return p.KeyID, ok
}
