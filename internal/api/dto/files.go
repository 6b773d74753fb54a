package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/api/validation"
	"github.com/hugh/go-crm/internal/crm"
)

// UpdateFileRequest renames a file or moves its links. Content is immutable.
type UpdateFileRequest struct {
	Name      *string             `json:"name"`
	ProjectID Nullable[uuid.UUID] `json:"project_id"`
	ContactID Nullable[uuid.UUID] `json:"contact_id"`
}

func (r UpdateFileRequest) Validate() map[string]string {
	errors := fieldErrors{}
	if r.Name != nil {
		if strings.TrimSpace(*r.Name) == "" {
			errors.add("name", "Name cannot be empty")
		} else if validation.TooLong(*r.Name, validation.MaxNameLength) {
			errors.add("name", "Name is too long")
		}
	}
	return errors
}

func (r UpdateFileRequest) ToPatch() crm.FilePatch {
	return crm.FilePatch{
		Name:         r.Name,
		ProjectID:    r.ProjectID.Ptr(),
		ContactID:    r.ContactID.Ptr(),
		ClearProject: r.ProjectID.Null(),
		ClearContact: r.ContactID.Null(),
	}
}
