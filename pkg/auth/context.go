package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const principalKey contextKey = "principal"

// ErrNoPrincipal is returned when no caller identity exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrNoPrincipal = errors.New("caller identity not found in context")

// Principal is the authenticated caller as resolved from the session or the
// identity headers. Role is the raw role string; bounded contexts validate it.
type Principal struct {
	ID   string
	Name string
	Role string
}

// PrincipalFromCtx extracts the caller identity from the request context.
func PrincipalFromCtx(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.ID == "" {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}

// WithPrincipal returns a new context with p attached.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
