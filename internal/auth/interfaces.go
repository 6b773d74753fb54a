package auth

import "context"

// TokenVerifier turns a bearer token into a caller identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// Authenticator is the password sign-in surface.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResponse, error)
	VerifyEmail(ctx context.Context, token string) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenVerifier = (*JWTService)(nil)
	_ TokenVerifier = (*OIDCVerifier)(nil)
)
