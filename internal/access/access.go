// Package access resolves the calling user and enforces team membership.
//
// Every tenant-scoped read and write starts with RequireMember or
// RequireAdmin; nothing else in the codebase checks roles.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrUserNotFound    = errors.New("user not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrTeamNotFound    = errors.New("team not found")

	ErrNotMember = fmt.Errorf("%w: you are not a member of this team", ErrAccessDenied)
	ErrNotAdmin  = fmt.Errorf("%w: admin privileges required", ErrAccessDenied)

	// ErrEmailNotVerified guards rows whose owner never proved the address.
	ErrEmailNotVerified = fmt.Errorf("%w: email address has not been verified", ErrAccessDenied)
)

// Member is the result of a successful membership check.
type Member struct {
	User       models.User
	Membership models.TeamMembership
}

// Admin is the result of a successful admin check.
type Admin struct {
	Member
	Team models.Team
}

// IsOwner reports whether the caller created the team.
func (a *Admin) IsOwner() bool {
	return a.Team.OwnerID == a.User.ID
}

// CurrentUser maps the request identity to its user row by email. Rows
// without a verified email are refused, since anyone can register an address.
func CurrentUser(ctx context.Context, db *gorm.DB) (*models.User, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", id.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	if user.EmailVerifiedAt == nil {
		return nil, ErrEmailNotVerified
	}
	return &user, nil
}

// RequireMember fails with ErrNotMember unless the caller has a membership
// row for teamID.
func RequireMember(ctx context.Context, db *gorm.DB, teamID uuid.UUID) (*Member, error) {
	user, err := CurrentUser(ctx, db)
	if err != nil {
		return nil, err
	}

	var membership models.TeamMembership
	if err := db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, user.ID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("loading membership: %w", err)
	}

	return &Member{User: *user, Membership: membership}, nil
}

// RequireAdmin additionally requires the admin role or team ownership.
func RequireAdmin(ctx context.Context, db *gorm.DB, teamID uuid.UUID) (*Admin, error) {
	member, err := RequireMember(ctx, db, teamID)
	if err != nil {
		return nil, err
	}

	var team models.Team
	if err := db.WithContext(ctx).First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("loading team: %w", err)
	}

	admin := &Admin{Member: *member, Team: team}
	if member.Membership.Role != models.MemberRoleAdmin && !admin.IsOwner() {
		return nil, ErrNotAdmin
	}
	return admin, nil
}

// Reason classifies a guard failure for metrics and logs. It returns "" for
// errors the guard did not produce.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrNotMember):
		return "not_member"
	case errors.Is(err, ErrNotAdmin):
		return "not_admin"
	case errors.Is(err, ErrEmailNotVerified):
		return "unverified"
	case errors.Is(err, ErrTeamNotFound):
		return "team_not_found"
	}
	return ""
}
