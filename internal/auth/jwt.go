package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const ProviderSession = "session"

const (
	purposeVerifyEmail = "verify_email"
	verificationExpiry = 48 * time.Hour
)

type Claims struct {
	Email string `json:"email"`
	// Purpose is empty for session tokens.
	Purpose string `json:"purpose,omitempty"`
	// Stamp ties a verification token to the password it was issued for.
	Stamp string `json:"stamp,omitempty"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 session tokens.
type JWTService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

func NewJWTService(secret string, expiry time.Duration, issuer string) *JWTService {
	if issuer == "" {
		issuer = "go-crm"
	}
	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

func (s *JWTService) GenerateToken(userID uuid.UUID, email string) (string, error) {
	return s.sign(s.claims(userID, email, s.expiry))
}

// GenerateVerificationToken issues a token that proves control of email.
// It is never accepted as a session.
func (s *JWTService) GenerateVerificationToken(userID uuid.UUID, email, stamp string) (string, error) {
	claims := s.claims(userID, email, verificationExpiry)
	claims.Purpose = purposeVerifyEmail
	claims.Stamp = stamp
	return s.sign(claims)
}

func (s *JWTService) claims(userID uuid.UUID, email string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   userID.String(),
		},
	}
}

func (s *JWTService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken accepts session tokens only.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateVerificationToken accepts email verification tokens only.
func (s *JWTService) ValidateVerificationToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purposeVerifyEmail {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Verify implements TokenVerifier.
func (s *JWTService) Verify(tokenString string) (Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Email:    claims.Email,
		Subject:  claims.Subject,
		Provider: ProviderSession,
	}, nil
}

func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}
