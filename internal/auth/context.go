package auth

import (
	"context"

	"github.com/collegiate-app/collegiate/internal/model"
)

type contextKey struct{}

// AuthContext carries the identity-provider user resolved from the
// request's bearer token.
type AuthContext struct {
	UserID string
	Email  string
	Role   model.Role
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.UserID
}

func IsCounselor(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ac.Role == model.RoleCounselor
}
