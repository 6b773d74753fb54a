package teams

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/database"
	"github.com/hugh/go-crm/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrAlreadyMember     = errors.New("user is already a member of this team")
	ErrMemberNotFound    = errors.New("member not found")
	ErrCannotRemoveOwner = errors.New("cannot remove team owner")
	// ErrCannotChangeOwnerRole matches ErrCannotRemoveOwner under errors.Is.
	ErrCannotChangeOwnerRole = fmt.Errorf("cannot change owner's role: %w", ErrCannotRemoveOwner)
	ErrInvalidRole           = errors.New("invalid member role")
	ErrInvalidName           = errors.New("team name is required")
)

// TeamWithRole is a team as seen by one of its members.
type TeamWithRole struct {
	models.Team
	Role models.MemberRole `json:"role"`
}

// Member is a user as listed on a team roster.
type Member struct {
	models.User
	Role         models.MemberRole `json:"role"`
	MembershipID uuid.UUID         `json:"membership_id"`
}

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Bootstrap creates a team owned by owner with owner as its first admin. It
// must run inside the caller's transaction.
func Bootstrap(tx *gorm.DB, owner *models.User, name string) (*models.Team, error) {
	team := models.Team{Name: name, OwnerID: owner.ID}
	if err := tx.Create(&team).Error; err != nil {
		return nil, fmt.Errorf("creating team: %w", err)
	}

	membership := models.TeamMembership{
		TeamID: team.ID,
		UserID: owner.ID,
		Role:   models.MemberRoleAdmin,
	}
	if err := tx.Create(&membership).Error; err != nil {
		return nil, fmt.Errorf("creating owner membership: %w", err)
	}

	return &team, nil
}

// List returns every team the caller belongs to with the caller's role.
func (s *Service) List(ctx context.Context) ([]TeamWithRole, error) {
	user, err := access.CurrentUser(ctx, s.db)
	if err != nil {
		return nil, err
	}

	var out []TeamWithRole
	err = s.db.WithContext(ctx).
		Table("teams").
		Select("teams.*, team_memberships.role AS role").
		Joins("JOIN team_memberships ON team_memberships.team_id = teams.id").
		Where("team_memberships.user_id = ?", user.ID).
		Order("teams.created_at ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	if out == nil {
		out = []TeamWithRole{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, teamID uuid.UUID) (*TeamWithRole, error) {
	member, err := access.RequireMember(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}

	var team models.Team
	if err := s.db.WithContext(ctx).First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrTeamNotFound
		}
		return nil, err
	}

	return &TeamWithRole{Team: team, Role: member.Membership.Role}, nil
}

func (s *Service) GetMembers(ctx context.Context, teamID uuid.UUID) ([]Member, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	var memberships []models.TeamMembership
	if err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}

	userIDs := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		userIDs[i] = m.UserID
	}

	users := map[uuid.UUID]models.User{}
	if len(userIDs) > 0 {
		var rows []models.User
		if err := s.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("loading members: %w", err)
		}
		for _, u := range rows {
			users[u.ID] = u
		}
	}

	out := make([]Member, 0, len(memberships))
	for _, m := range memberships {
		u, ok := users[m.UserID]
		if !ok {
			continue
		}
		out = append(out, Member{User: u, Role: m.Role, MembershipID: m.ID})
	}
	return out, nil
}

// Create makes a new team owned by the caller.
func (s *Service) Create(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	user, err := access.CurrentUser(ctx, s.db)
	if err != nil {
		return nil, err
	}

	var team *models.Team
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err = Bootstrap(tx, user, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("team created", "team_id", team.ID, "owner_id", user.ID)
	return team, nil
}

// Update renames a team.
func (s *Service) Update(ctx context.Context, teamID uuid.UUID, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	admin, err := access.RequireAdmin(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Team{}).
		Where("id = ?", teamID).
		Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("renaming team: %w", err)
	}

	team := admin.Team
	team.Name = name
	return &team, nil
}

// AddMember grants an existing user access to the team.
func (s *Service) AddMember(ctx context.Context, teamID uuid.UUID, email string, role models.MemberRole) (*models.TeamMembership, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	admin, err := access.RequireAdmin(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrUserNotFound
		}
		return nil, err
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", teamID, user.ID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyMember
	}

	membership := models.TeamMembership{TeamID: teamID, UserID: user.ID, Role: role}
	if err := s.db.WithContext(ctx).Create(&membership).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("creating membership: %w", err)
	}

	s.logger.Info("member added", "team_id", teamID, "user_id", user.ID, "role", role, "by", admin.User.ID)
	return &membership, nil
}

// RemoveMember revokes a user's access. The owner can never be removed.
func (s *Service) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	admin, err := access.RequireAdmin(ctx, s.db, teamID)
	if err != nil {
		return err
	}
	if userID == admin.Team.OwnerID {
		return ErrCannotRemoveOwner
	}

	res := s.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMembership{})
	if res.Error != nil {
		return fmt.Errorf("removing membership: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}

	s.logger.Info("member removed", "team_id", teamID, "user_id", userID, "by", admin.User.ID)
	return nil
}

// UpdateMemberRole changes a member's role. The owner's role is fixed.
func (s *Service) UpdateMemberRole(ctx context.Context, teamID, userID uuid.UUID, role models.MemberRole) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	admin, err := access.RequireAdmin(ctx, s.db, teamID)
	if err != nil {
		return err
	}
	if userID == admin.Team.OwnerID {
		return ErrCannotChangeOwnerRole
	}

	res := s.db.WithContext(ctx).Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("updating role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}

	s.logger.Info("member role changed", "team_id", teamID, "user_id", userID, "role", role, "by", admin.User.ID)
	return nil
}
