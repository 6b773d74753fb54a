package dto

import (
	"strings"

	"github.com/hugh/go-crm/internal/api/validation"
	"github.com/hugh/go-crm/internal/database/models"
)

type TeamRequest struct {
	Name string `json:"name"`
}

func (r TeamRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if strings.TrimSpace(r.Name) == "" {
		errors.add("name", "Name is required")
	} else if validation.TooLong(r.Name, validation.MaxNameLength) {
		errors.add("name", "Name is too long")
	}
	return errors
}

type AddMemberRequest struct {
	Email string            `json:"email"`
	Role  models.MemberRole `json:"role"`
}

func (r *AddMemberRequest) Validate() map[string]string {
	errors := fieldErrors{}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		errors.add("email", "Email is required")
	} else if !validation.IsValidEmail(r.Email) {
		errors.add("email", "Email is invalid")
	}
	if r.Role == "" {
		r.Role = models.MemberRoleMember
	}
	if !r.Role.Valid() {
		errors.add("role", "Role must be admin or member")
	}
	return errors
}

type UpdateMemberRoleRequest struct {
	Role models.MemberRole `json:"role"`
}

func (r UpdateMemberRoleRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if !r.Role.Valid() {
		errors.add("role", "Role must be admin or member")
	}
	return errors
}
