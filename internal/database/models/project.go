package models

import "github.com/google/uuid"

type ProjectStatus string

const (
	ProjectStatusLead      ProjectStatus = "lead"
	ProjectStatusQuote     ProjectStatus = "quote"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// ProjectStatuses lists every status in pipeline order.
var ProjectStatuses = []ProjectStatus{
	ProjectStatusLead,
	ProjectStatusQuote,
	ProjectStatusActive,
	ProjectStatusCompleted,
	ProjectStatusCancelled,
}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Project struct {
	Base
	TeamID      uuid.UUID     `gorm:"type:uuid;not null;index:idx_projects_team_status" json:"team_id"`
	ContactID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"contact_id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `gorm:"not null;default:'lead';index:idx_projects_team_status" json:"status"`
	Value       *float64      `json:"value,omitempty"`
	StartDate   *int64        `json:"start_date,omitempty"`
	EndDate     *int64        `json:"end_date,omitempty"`
	AssignedTo  *uuid.UUID    `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	CreatedBy   uuid.UUID     `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedAt   int64         `gorm:"autoUpdateTime:milli" json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

func (p Project) TeamScope() uuid.UUID { return p.TeamID }
