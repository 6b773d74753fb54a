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

type ProjectInput struct {
	ContactID   uuid.UUID
	Title       string
	Description string
	Status      models.ProjectStatus
	Value       *float64
	StartDate   *int64
	EndDate     *int64
	AssignedTo  *uuid.UUID
}

type ProjectPatch struct {
	ContactID      *uuid.UUID
	Title          *string
	Description    *string
	Status         *models.ProjectStatus
	Value          *float64
	StartDate      *int64
	EndDate        *int64
	AssignedTo     *uuid.UUID
	ClearValue     bool
	ClearStartDate bool
	ClearEndDate   bool
	ClearAssignee  bool
}

type ProjectFilter struct {
	Status    models.ProjectStatus
	ContactID *uuid.UUID
}

type Projects struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewProjects(db *gorm.DB, logger *slog.Logger) *Projects {
	return &Projects{db: db, logger: logger}
}

func (s *Projects) List(ctx context.Context, teamID uuid.UUID, f ProjectFilter) ([]models.Project, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("team_id = ?", teamID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ContactID != nil {
		q = q.Where("contact_id = ?", *f.ContactID)
	}

	projects := []models.Project{}
	if err := q.Order(newestFirst).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (s *Projects) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, _, err := load[models.Project](ctx, s.db, "project", id)
	return p, err
}

func (s *Projects) Create(ctx context.Context, teamID uuid.UUID, in ProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if in.ContactID == uuid.Nil {
		return nil, invalid("contact_id is required")
	}
	if in.Status == "" {
		in.Status = models.ProjectStatusLead
	}
	if !in.Status.Valid() {
		return nil, invalid("unknown project status %q", in.Status)
	}
	if in.Value != nil && *in.Value < 0 {
		return nil, invalid("value must not be negative")
	}
	if err := checkSchedule(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	member, err := access.RequireMember(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}

	refs := refChecker{ctx: ctx, db: s.db, teamID: teamID}
	if err := refs.contact(&in.ContactID); err != nil {
		return nil, err
	}
	if err := refs.assignee(in.AssignedTo); err != nil {
		return nil, err
	}

	project := models.Project{
		TeamID:      teamID,
		ContactID:   in.ContactID,
		Title:       title,
		Description: in.Description,
		Status:      in.Status,
		Value:       in.Value,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   member.User.ID,
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created", "team_id", teamID, "project_id", project.ID, "by", member.User.ID)
	return &project, nil
}

func (s *Projects) Update(ctx context.Context, id uuid.UUID, patch ProjectPatch) (*models.Project, error) {
	p, _, err := load[models.Project](ctx, s.db, "project", id)
	if err != nil {
		return nil, err
	}

	refs := refChecker{ctx: ctx, db: s.db, teamID: p.TeamID}
	updates := map[string]interface{}{}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("title is required")
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, invalid("unknown project status %q", *patch.Status)
		}
		updates["status"] = *patch.Status
	}
	switch {
	case patch.ClearValue:
		updates["value"] = nil
	case patch.Value != nil:
		if *patch.Value < 0 {
			return nil, invalid("value must not be negative")
		}
		updates["value"] = *patch.Value
	}

	start := patchedDate(p.StartDate, patch.StartDate, patch.ClearStartDate)
	end := patchedDate(p.EndDate, patch.EndDate, patch.ClearEndDate)
	if err := checkSchedule(start, end); err != nil {
		return nil, err
	}
	if patch.ClearStartDate || patch.StartDate != nil {
		updates["start_date"] = start
	}
	if patch.ClearEndDate || patch.EndDate != nil {
		updates["end_date"] = end
	}
	if patch.ContactID != nil {
		if err := refs.contact(patch.ContactID); err != nil {
			return nil, err
		}
		updates["contact_id"] = *patch.ContactID
	}
	if !patch.ClearAssignee {
		if err := refs.assignee(patch.AssignedTo); err != nil {
			return nil, err
		}
	}
	linkUpdate(updates, "assigned_to", patch.AssignedTo, patch.ClearAssignee)

	updates["updated_at"] = models.NowMillis()
	if err := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", p.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return reload[models.Project](ctx, s.db, p.ID)
}

// Remove deletes a project and clears the project link on its tasks,
// activities and files.
func (s *Projects) Remove(ctx context.Context, id uuid.UUID) error {
	p, member, err := load[models.Project](ctx, s.db, "project", id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.Task{}, &models.Activity{}, &models.File{}} {
			if err := tx.Model(m).Where("project_id = ?", p.ID).Update("project_id", nil).Error; err != nil {
				return fmt.Errorf("unlinking project: %w", err)
			}
		}
		return tx.Delete(&models.Project{}, "id = ?", p.ID).Error
	})
	if err != nil {
		return err
	}

	s.logger.Info("project removed", "team_id", p.TeamID, "project_id", p.ID, "by", member.User.ID)
	return nil
}

// patchedDate is the value a date column will hold after the patch.
func patchedDate(stored, supplied *int64, clear bool) *int64 {
	switch {
	case clear:
		return nil
	case supplied != nil:
		return supplied
	}
	return stored
}

func checkSchedule(start, end *int64) error {
	if start != nil && end != nil && *end < *start {
		return invalid("end date must not be before start date")
	}
	return nil
}
