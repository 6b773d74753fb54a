package dto

import (
	"github.com/hugh/go-crm/internal/api/validation"
	"github.com/hugh/go-crm/internal/users"
)

type CreateUserRequest struct {
	Name string `json:"name"`
}

func (r CreateUserRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if validation.TooLong(r.Name, validation.MaxNameLength) {
		errors.add("name", "Name is too long")
	}
	return errors
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

func (r UpdateProfileRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if r.Name != nil && validation.TooLong(*r.Name, validation.MaxNameLength) {
		errors.add("name", "Name is too long")
	}
	if r.Image != nil && *r.Image != "" && !validation.IsValidImageURL(*r.Image) {
		errors.add("image", "Image must be an http or https URL")
	}
	return errors
}

func (r UpdateProfileRequest) ToPatch() users.ProfilePatch {
	return users.ProfilePatch{Name: r.Name, Image: r.Image}
}
