package models

import "github.com/google/uuid"

// File is attachment metadata. The content lives in the blob store under
// StorageID.
type File struct {
	Base
	TeamID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"team_id"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`
	ContactID   *uuid.UUID `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	StorageID   string     `gorm:"not null;uniqueIndex" json:"storage_id"`
	Name        string     `gorm:"not null" json:"name"`
	ContentType string     `gorm:"column:type;not null" json:"type"`
	Size        int64      `gorm:"not null" json:"size"`
	UploadedBy  uuid.UUID  `gorm:"type:uuid;not null" json:"uploaded_by"`
}

func (File) TableName() string {
	return "files"
}

func (f File) TeamScope() uuid.UUID { return f.TeamID }
