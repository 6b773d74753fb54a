package models

import "github.com/google/uuid"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Pending reports whether the task still needs work.
func (s TaskStatus) Pending() bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	Base
	TeamID      uuid.UUID    `gorm:"type:uuid;not null;index:idx_tasks_team_status" json:"team_id"`
	ProjectID   *uuid.UUID   `gorm:"type:uuid;index" json:"project_id,omitempty"`
	ContactID   *uuid.UUID   `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `gorm:"not null;default:'todo';index:idx_tasks_team_status" json:"status"`
	Priority    TaskPriority `gorm:"not null;default:'medium'" json:"priority"`
	DueDate     *int64       `json:"due_date,omitempty"`
	AssignedTo  *uuid.UUID   `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	CreatedBy   uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedAt   int64        `gorm:"autoUpdateTime:milli" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t Task) TeamScope() uuid.UUID { return t.TeamID }
