// Package dashboard computes read-only team summaries. Every call recomputes
// from the tables; nothing is cached.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/database/models"
	"gorm.io/gorm"
)

const (
	DefaultActivityLimit = 10
	MaxActivityLimit     = 100
)

type Stats struct {
	TotalContacts     int64   `json:"total_contacts"`
	TotalProjects     int64   `json:"total_projects"`
	ActiveProjects    int64   `json:"active_projects"`
	CompletedProjects int64   `json:"completed_projects"`
	PendingTasks      int64   `json:"pending_tasks"`
	TotalTasks        int64   `json:"total_tasks"`
	TotalValue        float64 `json:"total_value"`
}

// Pipeline groups projects by status. Cancelled projects are counted but
// carry no value.
type Pipeline struct {
	Counts map[models.ProjectStatus]int64   `json:"counts"`
	Values map[models.ProjectStatus]float64 `json:"values"`
}

type RecentActivity struct {
	models.Activity
	ContactName  string `json:"contact_name,omitempty"`
	ProjectTitle string `json:"project_title,omitempty"`
	UserName     string `json:"user_name,omitempty"`
}

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

type statusRow struct {
	Status models.ProjectStatus
	Count  int64
	Value  float64
}

func (s *Service) projectsByStatus(ctx context.Context, teamID uuid.UUID) ([]statusRow, error) {
	var rows []statusRow
	err := s.db.WithContext(ctx).Model(&models.Project{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(value), 0) AS value").
		Where("team_id = ?", teamID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating projects: %w", err)
	}
	return rows, nil
}

func (s *Service) Stats(ctx context.Context, teamID uuid.UUID) (*Stats, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	var stats Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Contact{}).Where("team_id = ?", teamID).Count(&stats.TotalContacts).Error; err != nil {
		return nil, fmt.Errorf("counting contacts: %w", err)
	}
	if err := db.Model(&models.Task{}).Where("team_id = ?", teamID).Count(&stats.TotalTasks).Error; err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	if err := db.Model(&models.Task{}).
		Where("team_id = ? AND status IN ?", teamID, []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusInProgress}).
		Count(&stats.PendingTasks).Error; err != nil {
		return nil, fmt.Errorf("counting pending tasks: %w", err)
	}

	rows, err := s.projectsByStatus(ctx, teamID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.TotalProjects += r.Count
		switch r.Status {
		case models.ProjectStatusActive:
			stats.ActiveProjects = r.Count
			stats.TotalValue += r.Value
		case models.ProjectStatusCompleted:
			stats.CompletedProjects = r.Count
			stats.TotalValue += r.Value
		}
	}
	return &stats, nil
}

func (s *Service) Pipeline(ctx context.Context, teamID uuid.UUID) (*Pipeline, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	rows, err := s.projectsByStatus(ctx, teamID)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Counts: make(map[models.ProjectStatus]int64, len(models.ProjectStatuses)),
		Values: make(map[models.ProjectStatus]float64, len(models.ProjectStatuses)-1),
	}
	for _, status := range models.ProjectStatuses {
		p.Counts[status] = 0
		if status != models.ProjectStatusCancelled {
			p.Values[status] = 0
		}
	}
	for _, r := range rows {
		if _, ok := p.Counts[r.Status]; !ok {
			s.logger.Warn("project with unknown status", "team_id", teamID, "status", r.Status)
			continue
		}
		p.Counts[r.Status] = r.Count
		if _, ok := p.Values[r.Status]; ok {
			p.Values[r.Status] = r.Value
		}
	}
	return p, nil
}

// RecentActivities returns the latest activities with the names of their
// linked contact, project and author. limit is clamped to
// [1, MaxActivityLimit] with DefaultActivityLimit for non-positive values.
func (s *Service) RecentActivities(ctx context.Context, teamID uuid.UUID, limit int) ([]RecentActivity, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = DefaultActivityLimit
	case limit > MaxActivityLimit:
		limit = MaxActivityLimit
	}

	db := s.db.WithContext(ctx)
	var activities []models.Activity
	if err := db.Where("team_id = ?", teamID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	var contactIDs, projectIDs, userIDs []uuid.UUID
	for _, a := range activities {
		if a.ContactID != nil {
			contactIDs = append(contactIDs, *a.ContactID)
		}
		if a.ProjectID != nil {
			projectIDs = append(projectIDs, *a.ProjectID)
		}
		userIDs = append(userIDs, a.CreatedBy)
	}

	contactNames := map[uuid.UUID]string{}
	if len(contactIDs) > 0 {
		var contacts []models.Contact
		if err := db.Select("id, name").Where("id IN ?", contactIDs).Find(&contacts).Error; err != nil {
			return nil, fmt.Errorf("loading contacts: %w", err)
		}
		for _, c := range contacts {
			contactNames[c.ID] = c.Name
		}
	}

	projectTitles := map[uuid.UUID]string{}
	if len(projectIDs) > 0 {
		var projects []models.Project
		if err := db.Select("id, title").Where("id IN ?", projectIDs).Find(&projects).Error; err != nil {
			return nil, fmt.Errorf("loading projects: %w", err)
		}
		for _, p := range projects {
			projectTitles[p.ID] = p.Title
		}
	}

	userNames := map[uuid.UUID]string{}
	if len(userIDs) > 0 {
		var users []models.User
		if err := db.Select("id, name, email").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, fmt.Errorf("loading users: %w", err)
		}
		for _, u := range users {
			userNames[u.ID] = u.DisplayName()
		}
	}

	out := make([]RecentActivity, len(activities))
	for i, a := range activities {
		out[i] = RecentActivity{Activity: a, UserName: userNames[a.CreatedBy]}
		if a.ContactID != nil {
			out[i].ContactName = contactNames[*a.ContactID]
		}
		if a.ProjectID != nil {
			out[i].ProjectTitle = projectTitles[*a.ProjectID]
		}
	}
	return out, nil
}
