package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/database"
	"github.com/hugh/go-crm/internal/database/models"
	"github.com/hugh/go-crm/internal/teams"
	"gorm.io/gorm"
)

var ErrInvalidEmail = errors.New("email is required")

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

var _ auth.Provisioner = (*Service)(nil)

// Current returns the caller, or nil without error when the request is
// anonymous.
func (s *Service) Current(ctx context.Context) (*models.User, error) {
	user, err := access.CurrentUser(ctx, s.db)
	if errors.Is(err, access.ErrUnauthenticated) {
		return nil, nil
	}
	return user, err
}

// CreateUser provisions the caller's account on first sign-in. Calling it
// again returns the existing user untouched. Both providers vouch for the
// email: OIDC tokens are checked for email_verified, and sessions are only
// minted for verified accounts.
func (s *Service) CreateUser(ctx context.Context, name string) (*models.User, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, access.ErrUnauthenticated
	}

	user, _, err := s.Provision(ctx, auth.ProvisionInput{
		Email:    id.Email,
		Name:     strings.TrimSpace(name),
		Verified: true,
	})
	return user, err
}

// Provision creates the user, a personal team named after them and the owner
// membership in one transaction. An existing email short-circuits with
// created=false; a verified input first claims an unverified row.
func (s *Service) Provision(ctx context.Context, input auth.ProvisionInput) (*models.User, bool, error) {
	if input.Email == "" {
		return nil, false, ErrInvalidEmail
	}

	existing, err := s.findByEmail(ctx, input.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if input.Verified && existing.EmailVerifiedAt == nil {
			err = s.claim(ctx, existing, input.Name)
		}
		return existing, false, err
	}

	user := models.User{
		Email:        input.Email,
		Name:         input.Name,
		Role:         models.UserRoleOwner,
		PasswordHash: input.PasswordHash,
	}
	if input.Verified {
		now := models.NowMillis()
		user.EmailVerifiedAt = &now
	}

	var team *models.Team
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		var err error
		team, err = teams.Bootstrap(tx, &user, user.DisplayName()+"'s Team")
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			// Lost a race with a concurrent sign-in for the same email.
			existing, findErr := s.findByEmail(ctx, input.Email)
			if findErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("provisioning user: %w", err)
	}

	s.logger.Info("user provisioned", "user_id", user.ID, "team_id", team.ID)
	return &user, true, nil
}

// claim hands an unverified row to the verified owner of its email. Whoever
// registered it never proved the address, so their password is discarded.
func (s *Service) claim(ctx context.Context, user *models.User, name string) error {
	now := models.NowMillis()
	updates := map[string]interface{}{
		"password_hash":     "",
		"email_verified_at": now,
	}
	if name != "" {
		updates["name"] = name
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND email_verified_at IS NULL", user.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("claiming unverified user: %w", err)
	}

	s.logger.Warn("unverified registration claimed by verified sign-in", "user_id", user.ID)
	user.PasswordHash = ""
	user.EmailVerifiedAt = &now
	if name != "" {
		user.Name = name
	}
	return nil
}

// ProfilePatch carries the editable profile fields. Nil or empty values are
// left unchanged.
type ProfilePatch struct {
	Name  *string
	Image *string
}

func (s *Service) UpdateProfile(ctx context.Context, patch ProfilePatch) (*models.User, error) {
	user, err := access.CurrentUser(ctx, s.db)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Image != nil && *patch.Image != "" {
		updates["image"] = *patch.Image
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	var updated models.User
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", user.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
