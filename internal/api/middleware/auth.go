package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hugh/go-crm/internal/auth"
)

// TokenFromRequest extracts a bearer token. Sources, in order: the
// Authorization header, the "token" cookie, then X-Auth-Token.
func TokenFromRequest(r *http.Request) string {
	// 1. Check Authorization header (API requests)
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	// 2. Check cookie (browser sessions)
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	// 3. Check X-Auth-Token header (localStorage fallback for AJAX)
	return r.Header.Get("X-Auth-Token")
}

// Authenticate attaches the caller identity to the request context when a
// token is present. Requests without a token continue anonymously so that
// handlers can decide; a token that no verifier accepts is rejected.
func Authenticate(verifiers ...auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			for _, v := range verifiers {
				if v == nil {
					continue
				}
				identity, err := v.Verify(token)
				if err != nil {
					continue
				}
				ctx := auth.WithIdentity(r.Context(), identity)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			handleUnauthorized(w)
		})
	}
}

func handleUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
