package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWT(secret string, expiry time.Duration) *auth.JWTService {
	return auth.NewJWTService(secret, expiry, "go-crm")
}

func identityEcho(t *testing.T, wantEmail string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if wantEmail == "" {
			assert.False(t, ok)
		} else {
			require.True(t, ok)
			assert.Equal(t, wantEmail, id.Email)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func TestAuthenticate_TokenSources(t *testing.T) {
	jwtService := newJWT("test-secret", 24*time.Hour)
	token, err := jwtService.GenerateToken(uuid.New(), "test@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		apply func(r *http.Request)
	}{
		{"authorization_header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: token}) }},
		{"x_auth_token", func(r *http.Request) { r.Header.Set("X-Auth-Token", token) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Authenticate(jwtService)(identityEcho(t, "test@example.com"))

			req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
			tt.apply(req)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "OK", rec.Body.String())
		})
	}
}

func TestAuthenticate_NoTokenIsAnonymous(t *testing.T) {
	handler := Authenticate(newJWT("test-secret", time.Hour))(identityEcho(t, ""))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/users/me", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	handler := Authenticate(newJWT("test-secret", time.Hour))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/api/v1/teams", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Unauthorized")
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	jwtService := newJWT("test-secret", time.Nanosecond)
	token, err := jwtService.GenerateToken(uuid.New(), "test@example.com")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	handler := Authenticate(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for expired token")
	}))

	req := httptest.NewRequest("GET", "/api/v1/teams", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_TokenFromDifferentSecret(t *testing.T) {
	token, err := newJWT("secret-1", time.Hour).GenerateToken(uuid.New(), "test@example.com")
	require.NoError(t, err)

	handler := Authenticate(newJWT("secret-2", time.Hour))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for token with different secret")
	}))

	req := httptest.NewRequest("GET", "/api/v1/teams", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubVerifier struct {
	token    string
	identity auth.Identity
}

func (s stubVerifier) Verify(token string) (auth.Identity, error) {
	if token != s.token {
		return auth.Identity{}, errors.New("unknown token")
	}
	return s.identity, nil
}

func TestAuthenticate_FallsThroughVerifiers(t *testing.T) {
	external := stubVerifier{
		token:    "idp-token",
		identity: auth.Identity{Email: "sso@example.com", Subject: "abc", Provider: auth.ProviderOIDC},
	}
	handler := Authenticate(newJWT("test-secret", time.Hour), nil, external)(identityEcho(t, "sso@example.com"))

	req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer idp-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenFromRequest_Precedence(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie-token"})
	req.Header.Set("X-Auth-Token", "x-token")
	assert.Equal(t, "header-token", TokenFromRequest(req))

	req.Header.Del("Authorization")
	assert.Equal(t, "cookie-token", TokenFromRequest(req))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", TokenFromRequest(req))
}
