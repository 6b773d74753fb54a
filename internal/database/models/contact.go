package models

import "github.com/google/uuid"

type Contact struct {
	Base
	TeamID    uuid.UUID `gorm:"type:uuid;not null;index" json:"team_id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Address   string    `json:"address,omitempty"`
	Tags      Tags      `gorm:"type:text;not null" json:"tags"`
	Notes     string    `json:"notes,omitempty"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedAt int64     `gorm:"autoUpdateTime:milli" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

func (c Contact) TeamScope() uuid.UUID { return c.TeamID }
