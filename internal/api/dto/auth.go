package dto

import (
	"strings"

	"github.com/hugh/go-crm/internal/api/validation"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := fieldErrors{}

	if r.Email == "" {
		errors.add("email", "Email is required")
	} else if !validation.IsValidEmail(r.Email) {
		errors.add("email", "Email is invalid")
	}
	if r.Password == "" {
		errors.add("password", "Password is required")
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors.add("password", msg)
	}
	if strings.TrimSpace(r.Name) == "" {
		errors.add("name", "Name is required")
	} else if validation.TooLong(r.Name, validation.MaxNameLength) {
		errors.add("name", "Name is too long")
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := fieldErrors{}

	if r.Email == "" {
		errors.add("email", "Email is required")
	}
	if r.Password == "" {
		errors.add("password", "Password is required")
	}

	return errors
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

func (r VerifyEmailRequest) Validate() map[string]string {
	errors := fieldErrors{}

	if strings.TrimSpace(r.Token) == "" {
		errors.add("token", "Token is required")
	}

	return errors
}
