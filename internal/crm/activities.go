package crm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/database/models"
	"gorm.io/gorm"
)

type ActivityInput struct {
	ContactID *uuid.UUID
	ProjectID *uuid.UUID
	Type      models.ActivityType
	Subject   string
	Notes     string
	// Date defaults to now when zero.
	Date int64
}

type ActivityPatch struct {
	ContactID    *uuid.UUID
	ProjectID    *uuid.UUID
	Type         *models.ActivityType
	Subject      *string
	Notes        *string
	Date         *int64
	ClearContact bool
	ClearProject bool
}

type ActivityFilter struct {
	ContactID *uuid.UUID
	ProjectID *uuid.UUID
}

type Activities struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewActivities(db *gorm.DB, logger *slog.Logger) *Activities {
	return &Activities{db: db, logger: logger}
}

func (s *Activities) List(ctx context.Context, teamID uuid.UUID, f ActivityFilter) ([]models.Activity, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("team_id = ?", teamID)
	if f.ContactID != nil {
		q = q.Where("contact_id = ?", *f.ContactID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}

	activities := []models.Activity{}
	if err := q.Order(newestFirst).Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return activities, nil
}

func (s *Activities) Get(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	a, _, err := load[models.Activity](ctx, s.db, "activity", id)
	return a, err
}

func (s *Activities) Create(ctx context.Context, teamID uuid.UUID, in ActivityInput) (*models.Activity, error) {
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, invalid("subject is required")
	}
	if !in.Type.Valid() {
		return nil, invalid("unknown activity type %q", in.Type)
	}
	if in.Date == 0 {
		in.Date = models.NowMillis()
	}

	member, err := access.RequireMember(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}

	refs := refChecker{ctx: ctx, db: s.db, teamID: teamID}
	if err := refs.contact(in.ContactID); err != nil {
		return nil, err
	}
	if err := refs.project(in.ProjectID); err != nil {
		return nil, err
	}

	activity := models.Activity{
		TeamID:    teamID,
		ContactID: in.ContactID,
		ProjectID: in.ProjectID,
		Type:      in.Type,
		Subject:   subject,
		Notes:     in.Notes,
		Date:      in.Date,
		CreatedBy: member.User.ID,
	}
	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	s.logger.Info("activity logged", "team_id", teamID, "activity_id", activity.ID, "type", activity.Type, "by", member.User.ID)
	return &activity, nil
}

// Update patches an activity. Activities keep no update stamp.
func (s *Activities) Update(ctx context.Context, id uuid.UUID, patch ActivityPatch) (*models.Activity, error) {
	a, _, err := load[models.Activity](ctx, s.db, "activity", id)
	if err != nil {
		return nil, err
	}

	refs := refChecker{ctx: ctx, db: s.db, teamID: a.TeamID}
	updates := map[string]interface{}{}

	if patch.Subject != nil {
		subject := strings.TrimSpace(*patch.Subject)
		if subject == "" {
			return nil, invalid("subject is required")
		}
		updates["subject"] = subject
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return nil, invalid("unknown activity type %q", *patch.Type)
		}
		updates["type"] = *patch.Type
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if patch.Date != nil {
		updates["date"] = *patch.Date
	}
	if !patch.ClearContact {
		if err := refs.contact(patch.ContactID); err != nil {
			return nil, err
		}
	}
	if !patch.ClearProject {
		if err := refs.project(patch.ProjectID); err != nil {
			return nil, err
		}
	}
	linkUpdate(updates, "contact_id", patch.ContactID, patch.ClearContact)
	linkUpdate(updates, "project_id", patch.ProjectID, patch.ClearProject)

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Activity{}).
			Where("id = ?", a.ID).
			Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating activity: %w", err)
		}
	}
	return reload[models.Activity](ctx, s.db, a.ID)
}

func (s *Activities) Remove(ctx context.Context, id uuid.UUID) error {
	a, member, err := load[models.Activity](ctx, s.db, "activity", id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Activity{}, "id = ?", a.ID).Error; err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}

	s.logger.Info("activity removed", "team_id", a.TeamID, "activity_id", a.ID, "by", member.User.ID)
	return nil
}
