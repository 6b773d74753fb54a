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

type TaskInput struct {
	ProjectID   *uuid.UUID
	ContactID   *uuid.UUID
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *int64
	AssignedTo  *uuid.UUID
}

type TaskPatch struct {
	ProjectID     *uuid.UUID
	ContactID     *uuid.UUID
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *int64
	AssignedTo    *uuid.UUID
	ClearProject  bool
	ClearContact  bool
	ClearDueDate  bool
	ClearAssignee bool
}

type TaskFilter struct {
	Status     models.TaskStatus
	ProjectID  *uuid.UUID
	AssignedTo *uuid.UUID
}

type Tasks struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTasks(db *gorm.DB, logger *slog.Logger) *Tasks {
	return &Tasks{db: db, logger: logger}
}

func (s *Tasks) List(ctx context.Context, teamID uuid.UUID, f TaskFilter) ([]models.Task, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("team_id = ?", teamID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *f.AssignedTo)
	}

	tasks := []models.Task{}
	if err := q.Order(newestFirst).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *Tasks) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, _, err := load[models.Task](ctx, s.db, "task", id)
	return t, err
}

func (s *Tasks) Create(ctx context.Context, teamID uuid.UUID, in TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if in.Status == "" {
		in.Status = models.TaskStatusTodo
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}
	if !in.Status.Valid() {
		return nil, invalid("unknown task status %q", in.Status)
	}
	if !in.Priority.Valid() {
		return nil, invalid("unknown task priority %q", in.Priority)
	}

	member, err := access.RequireMember(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}

	refs := refChecker{ctx: ctx, db: s.db, teamID: teamID}
	if err := refs.project(in.ProjectID); err != nil {
		return nil, err
	}
	if err := refs.contact(in.ContactID); err != nil {
		return nil, err
	}
	if err := refs.assignee(in.AssignedTo); err != nil {
		return nil, err
	}

	task := models.Task{
		TeamID:      teamID,
		ProjectID:   in.ProjectID,
		ContactID:   in.ContactID,
		Title:       title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   member.User.ID,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.logger.Info("task created", "team_id", teamID, "task_id", task.ID, "by", member.User.ID)
	return &task, nil
}

func (s *Tasks) Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*models.Task, error) {
	t, _, err := load[models.Task](ctx, s.db, "task", id)
	if err != nil {
		return nil, err
	}

	refs := refChecker{ctx: ctx, db: s.db, teamID: t.TeamID}
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
			return nil, invalid("unknown task status %q", *patch.Status)
		}
		updates["status"] = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, invalid("unknown task priority %q", *patch.Priority)
		}
		updates["priority"] = *patch.Priority
	}
	switch {
	case patch.ClearDueDate:
		updates["due_date"] = nil
	case patch.DueDate != nil:
		updates["due_date"] = *patch.DueDate
	}

	if !patch.ClearProject {
		if err := refs.project(patch.ProjectID); err != nil {
			return nil, err
		}
	}
	if !patch.ClearContact {
		if err := refs.contact(patch.ContactID); err != nil {
			return nil, err
		}
	}
	if !patch.ClearAssignee {
		if err := refs.assignee(patch.AssignedTo); err != nil {
			return nil, err
		}
	}
	linkUpdate(updates, "project_id", patch.ProjectID, patch.ClearProject)
	linkUpdate(updates, "contact_id", patch.ContactID, patch.ClearContact)
	linkUpdate(updates, "assigned_to", patch.AssignedTo, patch.ClearAssignee)

	updates["updated_at"] = models.NowMillis()
	if err := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", t.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	return reload[models.Task](ctx, s.db, t.ID)
}

func (s *Tasks) Remove(ctx context.Context, id uuid.UUID) error {
	t, member, err := load[models.Task](ctx, s.db, "task", id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", t.ID).Error; err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	s.logger.Info("task removed", "team_id", t.TeamID, "task_id", t.ID, "by", member.User.ID)
	return nil
}
