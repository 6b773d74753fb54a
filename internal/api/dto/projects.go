package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/api/validation"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/database/models"
)

type CreateProjectRequest struct {
	ContactID   uuid.UUID            `json:"contact_id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Value       *float64             `json:"value"`
	StartDate   *int64               `json:"start_date"`
	EndDate     *int64               `json:"end_date"`
	AssignedTo  *uuid.UUID           `json:"assigned_to"`
}

func (r CreateProjectRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if r.ContactID == uuid.Nil {
		errors.add("contact_id", "Contact is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		errors.add("title", "Title is required")
	}
	if r.Status != "" && !r.Status.Valid() {
		errors.add("status", "Status must be one of lead, quote, active, completed, cancelled")
	}
	validateProjectFields(errors, &r.Title, &r.Description, r.Value, r.StartDate, r.EndDate)
	return errors
}

func (r CreateProjectRequest) ToInput() crm.ProjectInput {
	return crm.ProjectInput{
		ContactID:   r.ContactID,
		Title:       validation.SanitizeString(r.Title),
		Description: validation.SanitizeString(r.Description),
		Status:      r.Status,
		Value:       r.Value,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		AssignedTo:  r.AssignedTo,
	}
}

type UpdateProjectRequest struct {
	ContactID   *uuid.UUID            `json:"contact_id"`
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Status      *models.ProjectStatus `json:"status"`
	// null clears value, dates and the assignee
	Value      Nullable[float64]   `json:"value"`
	StartDate  Nullable[int64]     `json:"start_date"`
	EndDate    Nullable[int64]     `json:"end_date"`
	AssignedTo Nullable[uuid.UUID] `json:"assigned_to"`
}

func (r UpdateProjectRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if r.ContactID != nil && *r.ContactID == uuid.Nil {
		errors.add("contact_id", "Contact cannot be empty")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		errors.add("title", "Title cannot be empty")
	}
	if r.Status != nil && !r.Status.Valid() {
		errors.add("status", "Status must be one of lead, quote, active, completed, cancelled")
	}
	validateProjectFields(errors, r.Title, r.Description, r.Value.Ptr(), r.StartDate.Ptr(), r.EndDate.Ptr())
	return errors
}

func (r UpdateProjectRequest) ToPatch() crm.ProjectPatch {
	return crm.ProjectPatch{
		ContactID:      r.ContactID,
		Title:          sanitized(r.Title),
		Description:    sanitized(r.Description),
		Status:         r.Status,
		Value:          r.Value.Ptr(),
		StartDate:      r.StartDate.Ptr(),
		EndDate:        r.EndDate.Ptr(),
		AssignedTo:     r.AssignedTo.Ptr(),
		ClearValue:     r.Value.Null(),
		ClearStartDate: r.StartDate.Null(),
		ClearEndDate:   r.EndDate.Null(),
		ClearAssignee:  r.AssignedTo.Null(),
	}
}

func validateProjectFields(errors fieldErrors, title, description *string, value *float64, start, end *int64) {
	if title != nil && validation.TooLong(*title, validation.MaxNameLength) {
		errors.add("title", "Title is too long")
	}
	if description != nil && validation.TooLong(*description, validation.MaxTextLength) {
		errors.add("description", "Description is too long")
	}
	if value != nil && *value < 0 {
		errors.add("value", "Value cannot be negative")
	}
	if start != nil && end != nil && *end < *start {
		errors.add("end_date", "End date must not be before start date")
	}
}
