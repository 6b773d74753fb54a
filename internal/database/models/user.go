package models

// UserRole is informational and global; team access is decided by memberships.
type UserRole string

const (
	UserRoleOwner  UserRole = "owner"
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

type User struct {
	Base
	Email           string   `gorm:"uniqueIndex;not null" json:"email"`
	Name            string   `json:"name,omitempty"`
	Image           string   `json:"image,omitempty"`
	Role            UserRole `gorm:"not null;default:'member'" json:"role"`
	PasswordHash    string   `json:"-"`
	EmailVerifiedAt *int64   `json:"email_verified_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName falls back to the email when no name was given.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
