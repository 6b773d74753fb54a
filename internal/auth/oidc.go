package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

var ErrEmailNotVerified = errors.New("identity provider has not verified the email")

const ProviderOIDC = "oidc"

// OIDCClaims are the claims read from an external provider's access token.
type OIDCClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// OIDCVerifier accepts RS256 tokens signed by keys from a JWKS endpoint.
type OIDCVerifier struct {
	keyfunc  jwt.Keyfunc
	issuer   string
	audience string
	leeway   time.Duration
	jwks     *keyfunc.JWKS
}

// NewOIDCVerifier fetches the JWKS once at startup and refreshes it in the
// background. Close stops the refresh goroutine.
func NewOIDCVerifier(jwksURL, issuer, audience string) (*OIDCVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching jwks: %w", err)
	}

	v := NewOIDCVerifierFromKeyfunc(jwks.Keyfunc, issuer, audience)
	v.jwks = jwks
	return v, nil
}

// NewOIDCVerifierFromKeyfunc builds a verifier around an existing key source.
func NewOIDCVerifierFromKeyfunc(kf jwt.Keyfunc, issuer, audience string) *OIDCVerifier {
	return &OIDCVerifier{
		keyfunc:  kf,
		issuer:   issuer,
		audience: audience,
		leeway:   30 * time.Second,
	}
}

func (v *OIDCVerifier) Verify(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &OIDCClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyfunc, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}
	if !token.Valid || claims.Email == "" {
		return Identity{}, ErrInvalidToken
	}
	if !claims.EmailVerified {
		return Identity{}, ErrEmailNotVerified
	}

	return Identity{
		Email:    claims.Email,
		Subject:  claims.Subject,
		Provider: ProviderOIDC,
	}, nil
}

func (v *OIDCVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
