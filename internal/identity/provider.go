package identity

import (
	"context"

	"github.com/collegiate-app/collegiate/internal/model"
)

// Tokens is an access/refresh token pair issued by the provider.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is the outcome of a successful sign-in or sign-up. Tokens is
// nil when the provider created the account but issued no session (for
// example, pending email confirmation).
type AuthResult struct {
	User   model.AuthUser
	Tokens *Tokens
}

type SignUpParams struct {
	Email      string
	Password   string
	FullName   string
	Role       model.Role
	SchoolName string
}

// Provider is the set of identity operations the auth service depends on.
// Client talks to the hosted provider; Memory is the local fallback.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignUp(ctx context.Context, p SignUpParams) (*AuthResult, error)
	Recover(ctx context.Context, email string) error
	VerifyRecovery(ctx context.Context, token string) (*Tokens, error)
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
	UserFromToken(ctx context.Context, accessToken string) (*model.AuthUser, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
}
