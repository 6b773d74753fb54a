package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/api/validation"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/database/models"
)

const (
	taskStatusMessage   = "Status must be one of todo, in_progress, done"
	taskPriorityMessage = "Priority must be one of low, medium, high"
)

type CreateTaskRequest struct {
	ProjectID   *uuid.UUID          `json:"project_id"`
	ContactID   *uuid.UUID          `json:"contact_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *int64              `json:"due_date"`
	AssignedTo  *uuid.UUID          `json:"assigned_to"`
}

func (r CreateTaskRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if strings.TrimSpace(r.Title) == "" {
		errors.add("title", "Title is required")
	}
	if r.Status != "" && !r.Status.Valid() {
		errors.add("status", taskStatusMessage)
	}
	if r.Priority != "" && !r.Priority.Valid() {
		errors.add("priority", taskPriorityMessage)
	}
	validateTaskText(errors, &r.Title, &r.Description)
	return errors
}

func (r CreateTaskRequest) ToInput() crm.TaskInput {
	return crm.TaskInput{
		ProjectID:   r.ProjectID,
		ContactID:   r.ContactID,
		Title:       validation.SanitizeString(r.Title),
		Description: validation.SanitizeString(r.Description),
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		AssignedTo:  r.AssignedTo,
	}
}

// UpdateTaskRequest accepts null for every optional link to clear it.
type UpdateTaskRequest struct {
	ProjectID   Nullable[uuid.UUID]  `json:"project_id"`
	ContactID   Nullable[uuid.UUID]  `json:"contact_id"`
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	DueDate     Nullable[int64]      `json:"due_date"`
	AssignedTo  Nullable[uuid.UUID]  `json:"assigned_to"`
}

func (r UpdateTaskRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		errors.add("title", "Title cannot be empty")
	}
	if r.Status != nil && !r.Status.Valid() {
		errors.add("status", taskStatusMessage)
	}
	if r.Priority != nil && !r.Priority.Valid() {
		errors.add("priority", taskPriorityMessage)
	}
	validateTaskText(errors, r.Title, r.Description)
	return errors
}

func (r UpdateTaskRequest) ToPatch() crm.TaskPatch {
	return crm.TaskPatch{
		ProjectID:     r.ProjectID.Ptr(),
		ContactID:     r.ContactID.Ptr(),
		Title:         sanitized(r.Title),
		Description:   sanitized(r.Description),
		Status:        r.Status,
		Priority:      r.Priority,
		DueDate:       r.DueDate.Ptr(),
		AssignedTo:    r.AssignedTo.Ptr(),
		ClearProject:  r.ProjectID.Null(),
		ClearContact:  r.ContactID.Null(),
		ClearDueDate:  r.DueDate.Null(),
		ClearAssignee: r.AssignedTo.Null(),
	}
}

func validateTaskText(errors fieldErrors, title, description *string) {
	if title != nil && validation.TooLong(*title, validation.MaxNameLength) {
		errors.add("title", "Title is too long")
	}
	if description != nil && validation.TooLong(*description, validation.MaxTextLength) {
		errors.add("description", "Description is too long")
	}
}
