// Package crm holds the team-scoped entity services: contacts, projects,
// tasks, activities and file attachments.
package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidReference = errors.New("invalid reference")
	ErrContactInUse     = errors.New("contact is referenced by projects")
)

const newestFirst = "created_at DESC, id DESC"

type teamScoped interface {
	TeamScope() uuid.UUID
}

// load fetches a row by id and checks membership on the team stored on the
// row, never on a team supplied by the caller.
func load[T any, PT interface {
	*T
	teamScoped
}](ctx context.Context, db *gorm.DB, kind string, id uuid.UUID) (PT, *access.Member, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%s %w", kind, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("loading %s: %w", kind, err)
	}

	p := PT(&row)
	member, err := access.RequireMember(ctx, db, p.TeamScope())
	if err != nil {
		return nil, nil, err
	}
	return p, member, nil
}

// reload reads a row back after an update.
func reload[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// refChecker validates that linked rows live in the same team.
type refChecker struct {
	ctx    context.Context
	db     *gorm.DB
	teamID uuid.UUID
}

func (r refChecker) contact(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	return r.exists(&models.Contact{}, "contact", *id)
}

func (r refChecker) project(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	return r.exists(&models.Project{}, "project", *id)
}

// assignee must be a member of the team.
func (r refChecker) assignee(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := r.db.WithContext(r.ctx).Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", r.teamID, *id).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: assignee is not a member of this team", ErrInvalidReference)
	}
	return nil
}

func (r refChecker) exists(model interface{}, kind string, id uuid.UUID) error {
	var n int64
	if err := r.db.WithContext(r.ctx).Model(model).
		Where("id = ? AND team_id = ?", id, r.teamID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s does not belong to this team", ErrInvalidReference, kind)
	}
	return nil
}

// linkUpdate writes an optional link column: an explicit clear wins, then a
// supplied id, otherwise the column is untouched.
func linkUpdate(updates map[string]interface{}, column string, id *uuid.UUID, clear bool) {
	switch {
	case clear:
		updates[column] = nil
	case id != nil:
		updates[column] = *id
	}
}
