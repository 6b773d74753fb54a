package models

import "github.com/google/uuid"

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

func (r MemberRole) Valid() bool {
	return r == MemberRoleAdmin || r == MemberRoleMember
}

type Team struct {
	Base
	Name    string    `gorm:"not null" json:"name"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamMembership is the tenancy boundary: a user sees a team's data only while
// a row exists for the pair.
type TeamMembership struct {
	Base
	TeamID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_team_memberships_team_user" json:"team_id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_team_memberships_team_user;index" json:"user_id"`
	Role   MemberRole `gorm:"not null;default:'member'" json:"role"`
}

func (TeamMembership) TableName() string {
	return "team_memberships"
}
