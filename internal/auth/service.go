package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotVerified  = errors.New("email address has not been verified")
	ErrInvalidVerification = errors.New("invalid or expired verification token")
	ErrUnknownUser         = errors.New("user not found")
)

// Provisioner creates a user together with their personal team.
type Provisioner interface {
	Provision(ctx context.Context, input ProvisionInput) (user *models.User, created bool, err error)
}

type ProvisionInput struct {
	Email        string
	Name         string
	PasswordHash string
	// Verified marks the email as proven. An existing unverified row with the
	// same email is claimed: its password is discarded.
	Verified bool
}

// VerificationSender delivers the token that proves control of an address.
type VerificationSender interface {
	SendVerification(ctx context.Context, user *models.User, token string) error
}

// LogVerificationSender writes tokens to the log. Development only.
type LogVerificationSender struct {
	Logger *slog.Logger
}

func (l LogVerificationSender) SendVerification(ctx context.Context, user *models.User, token string) error {
	l.Logger.InfoContext(ctx, "email verification token", "email", user.Email, "token", token)
	return nil
}

// Service handles password accounts. Accounts from an external provider never
// get a password hash and cannot log in here.
//
// A password account gets no session until its email is verified, so a
// registration cannot squat on an address someone else will be invited with.
type Service struct {
	db          *gorm.DB
	jwt         *JWTService
	provisioner Provisioner
	sender      VerificationSender
}

// NewService builds the password service. A nil sender drops verification
// tokens; the account can still be verified with the verify command.
func NewService(db *gorm.DB, jwt *JWTService, provisioner Provisioner, sender VerificationSender) *Service {
	return &Service{db: db, jwt: jwt, provisioner: provisioner, sender: sender}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RegisterResponse struct {
	User                 *models.User `json:"user"`
	VerificationRequired bool         `json:"verification_required"`
}

// Register creates a password account and sends a verification token.
// Registering an address that was never verified replaces the earlier
// password, which invalidates tokens sent for it.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*RegisterResponse, error) {
	email := strings.TrimSpace(input.Email)
	name := strings.TrimSpace(input.Name)

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	switch {
	case user != nil && user.EmailVerifiedAt != nil:
		return nil, ErrUserExists
	case user != nil:
		updates := map[string]interface{}{"password_hash": hash}
		if name != "" {
			updates["name"] = name
		}
		if err := s.db.WithContext(ctx).Model(user).
			Where("email_verified_at IS NULL").
			Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("replacing unverified registration: %w", err)
		}
		user.PasswordHash = hash
		if name != "" {
			user.Name = name
		}
	default:
		var created bool
		user, created, err = s.provisioner.Provision(ctx, ProvisionInput{
			Email:        email,
			Name:         name,
			PasswordHash: hash,
		})
		if err != nil {
			return nil, err
		}
		if !created {
			return nil, ErrUserExists
		}
	}

	token, err := s.jwt.GenerateVerificationToken(user.ID, user.Email, passwordStamp(hash))
	if err != nil {
		return nil, err
	}
	if s.sender != nil {
		if err := s.sender.SendVerification(ctx, user, token); err != nil {
			return nil, fmt.Errorf("sending verification: %w", err)
		}
	}

	return &RegisterResponse{User: user, VerificationRequired: true}, nil
}

// VerifyEmail redeems a verification token and starts a session. The token
// only works while the password it was issued for is still current.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*AuthResponse, error) {
	claims, err := s.jwt.ValidateVerificationToken(token)
	if err != nil {
		return nil, ErrInvalidVerification
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidVerification
	}

	var user models.User
	if err := s.db.WithContext(ctx).
		Where("id = ? AND email = ?", userID, claims.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerification
		}
		return nil, err
	}
	if user.PasswordHash == "" || passwordStamp(user.PasswordHash) != claims.Stamp {
		return nil, ErrInvalidVerification
	}

	if user.EmailVerifiedAt == nil {
		if err := s.markVerified(ctx, &user); err != nil {
			return nil, err
		}
	}

	session, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: session, User: &user}, nil
}

// MarkVerified verifies an address without a token, for operators.
func (s *Service) MarkVerified(ctx context.Context, email string) (*models.User, error) {
	user, err := s.findByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	if user.EmailVerifiedAt == nil {
		if err := s.markVerified(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.findByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if user.EmailVerifiedAt == nil {
		return nil, ErrAccountNotVerified
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) markVerified(ctx context.Context, user *models.User) error {
	now := models.NowMillis()
	if err := s.db.WithContext(ctx).Model(user).
		Update("email_verified_at", now).Error; err != nil {
		return fmt.Errorf("marking email verified: %w", err)
	}
	user.EmailVerifiedAt = &now
	return nil
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

// passwordStamp fingerprints a bcrypt hash so a verification token dies when
// the password is replaced.
func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
