package dto

import (
	"strings"

	"github.com/hugh/go-crm/internal/api/validation"
	"github.com/hugh/go-crm/internal/crm"
)

type CreateContactRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Company string   `json:"company"`
	Address string   `json:"address"`
	Tags    []string `json:"tags"`
	Notes   string   `json:"notes"`
}

func (r CreateContactRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if strings.TrimSpace(r.Name) == "" {
		errors.add("name", "Name is required")
	}
	validateContactFields(errors, &r.Name, &r.Email, &r.Phone, &r.Company, &r.Address, &r.Notes, r.Tags)
	return errors
}

func (r CreateContactRequest) ToInput() crm.ContactInput {
	return crm.ContactInput{
		Name:    validation.SanitizeString(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Company: validation.SanitizeString(r.Company),
		Address: validation.SanitizeString(r.Address),
		Tags:    r.Tags,
		Notes:   validation.SanitizeString(r.Notes),
	}
}

type UpdateContactRequest struct {
	Name    *string   `json:"name"`
	Email   *string   `json:"email"`
	Phone   *string   `json:"phone"`
	Company *string   `json:"company"`
	Address *string   `json:"address"`
	Tags    *[]string `json:"tags"`
	Notes   *string   `json:"notes"`
}

func (r UpdateContactRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errors.add("name", "Name cannot be empty")
	}
	var tags []string
	if r.Tags != nil {
		tags = *r.Tags
	}
	validateContactFields(errors, r.Name, r.Email, r.Phone, r.Company, r.Address, r.Notes, tags)
	return errors
}

func (r UpdateContactRequest) ToPatch() crm.ContactPatch {
	return crm.ContactPatch{
		Name:    sanitized(r.Name),
		Email:   trimmed(r.Email),
		Phone:   trimmed(r.Phone),
		Company: sanitized(r.Company),
		Address: sanitized(r.Address),
		Tags:    r.Tags,
		Notes:   sanitized(r.Notes),
	}
}

func validateContactFields(errors fieldErrors, name, email, phone, company, address, notes *string, tags []string) {
	if name != nil && validation.TooLong(*name, validation.MaxNameLength) {
		errors.add("name", "Name is too long")
	}
	if email != nil && *email != "" && !validation.IsValidEmail(strings.TrimSpace(*email)) {
		errors.add("email", "Email is invalid")
	}
	if phone != nil && *phone != "" && !validation.IsValidPhone(strings.TrimSpace(*phone)) {
		errors.add("phone", "Phone is invalid")
	}
	if company != nil && validation.TooLong(*company, validation.MaxNameLength) {
		errors.add("company", "Company is too long")
	}
	if address != nil && validation.TooLong(*address, validation.MaxShortLength) {
		errors.add("address", "Address is too long")
	}
	if notes != nil && validation.TooLong(*notes, validation.MaxTextLength) {
		errors.add("notes", "Notes are too long")
	}
	if len(tags) > validation.MaxTags {
		errors.add("tags", "Too many tags")
	}
	for _, tag := range tags {
		if validation.TooLong(tag, validation.MaxNameLength) {
			errors.add("tags", "Tag is too long")
		}
	}
}

func sanitized(s *string) *string {
	if s == nil {
		return nil
	}
	v := validation.SanitizeString(*s)
	return &v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
