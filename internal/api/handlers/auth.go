package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/auth"
)

type AuthHandler struct {
	authService  auth.Authenticator
	rs           *Responder
	secureCookie bool
	cookieMaxAge int
}

// NewAuthHandler wires password sign-in. The session cookie lives as long
// as the token it carries.
func NewAuthHandler(authService auth.Authenticator, rs *Responder, tokenExpiry time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		rs:           rs,
		secureCookie: secureCookie,
		cookieMaxAge: int(tokenExpiry.Seconds()),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	// No session until the address is verified.
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	resp, err := h.authService.VerifyEmail(r.Context(), strings.TrimSpace(req.Token))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.setSessionCookie(w, resp.Token, h.cookieMaxAge)
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.setSessionCookie(w, resp.Token, h.cookieMaxAge)
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -1)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
