package models

import "github.com/google/uuid"

type ActivityType string

const (
	ActivityTypeCall      ActivityType = "call"
	ActivityTypeEmail     ActivityType = "email"
	ActivityTypeMeeting   ActivityType = "meeting"
	ActivityTypeSiteVisit ActivityType = "site_visit"
	ActivityTypeNote      ActivityType = "note"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTypeCall, ActivityTypeEmail, ActivityTypeMeeting, ActivityTypeSiteVisit, ActivityTypeNote:
		return true
	}
	return false
}

// Activity is a logged interaction. Date is when it happened, CreatedAt is
// when it was recorded.
type Activity struct {
	Base
	TeamID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"team_id"`
	ContactID *uuid.UUID   `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	ProjectID *uuid.UUID   `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Type      ActivityType `gorm:"not null" json:"type"`
	Subject   string       `gorm:"not null" json:"subject"`
	Notes     string       `json:"notes,omitempty"`
	Date      int64        `gorm:"not null;index" json:"date"`
	CreatedBy uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a Activity) TeamScope() uuid.UUID { return a.TeamID }
