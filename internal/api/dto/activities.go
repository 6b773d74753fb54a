package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/api/validation"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/database/models"
)

const activityTypeMessage = "Type must be one of call, email, meeting, site_visit, note"

type CreateActivityRequest struct {
	ContactID *uuid.UUID          `json:"contact_id"`
	ProjectID *uuid.UUID          `json:"project_id"`
	Type      models.ActivityType `json:"type"`
	Subject   string              `json:"subject"`
	Notes     string              `json:"notes"`
	Date      int64               `json:"date"`
}

func (r CreateActivityRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if r.Type == "" {
		errors.add("type", "Type is required")
	} else if !r.Type.Valid() {
		errors.add("type", activityTypeMessage)
	}
	if strings.TrimSpace(r.Subject) == "" {
		errors.add("subject", "Subject is required")
	}
	if r.Date < 0 {
		errors.add("date", "Date is invalid")
	}
	validateActivityText(errors, &r.Subject, &r.Notes)
	return errors
}

func (r CreateActivityRequest) ToInput() crm.ActivityInput {
	return crm.ActivityInput{
		ContactID: r.ContactID,
		ProjectID: r.ProjectID,
		Type:      r.Type,
		Subject:   validation.SanitizeString(r.Subject),
		Notes:     validation.SanitizeString(r.Notes),
		Date:      r.Date,
	}
}

type UpdateActivityRequest struct {
	ContactID Nullable[uuid.UUID]  `json:"contact_id"`
	ProjectID Nullable[uuid.UUID]  `json:"project_id"`
	Type      *models.ActivityType `json:"type"`
	Subject   *string              `json:"subject"`
	Notes     *string              `json:"notes"`
	Date      *int64               `json:"date"`
}

func (r UpdateActivityRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if r.Type != nil && !r.Type.Valid() {
		errors.add("type", activityTypeMessage)
	}
	if r.Subject != nil && strings.TrimSpace(*r.Subject) == "" {
		errors.add("subject", "Subject cannot be empty")
	}
	if r.Date != nil && *r.Date <= 0 {
		errors.add("date", "Date is invalid")
	}
	validateActivityText(errors, r.Subject, r.Notes)
	return errors
}

func (r UpdateActivityRequest) ToPatch() crm.ActivityPatch {
	return crm.ActivityPatch{
		ContactID:    r.ContactID.Ptr(),
		ProjectID:    r.ProjectID.Ptr(),
		Type:         r.Type,
		Subject:      sanitized(r.Subject),
		Notes:        sanitized(r.Notes),
		Date:         r.Date,
		ClearContact: r.ContactID.Null(),
		ClearProject: r.ProjectID.Null(),
	}
}

func validateActivityText(errors fieldErrors, subject, notes *string) {
	if subject != nil && validation.TooLong(*subject, validation.MaxNameLength) {
		errors.add("subject", "Subject is too long")
	}
	if notes != nil && validation.TooLong(*notes, validation.MaxTextLength) {
		errors.add("notes", "Notes are too long")
	}
}
