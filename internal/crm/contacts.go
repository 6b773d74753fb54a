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

// SearchLimit caps contact search results.
const SearchLimit = 50

type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Address string
	Tags    []string
	Notes   string
}

// ContactPatch changes only the non-nil fields.
type ContactPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Address *string
	Tags    *[]string
	Notes   *string
}

func (p ContactPatch) updates() (map[string]interface{}, error) {
	u := map[string]interface{}{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, invalid("name is required")
		}
		u["name"] = name
	}
	setString(u, "email", p.Email)
	setString(u, "phone", p.Phone)
	setString(u, "company", p.Company)
	setString(u, "address", p.Address)
	setString(u, "notes", p.Notes)
	if p.Tags != nil {
		u["tags"] = normalizeTags(*p.Tags)
	}
	return u, nil
}

type Contacts struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewContacts(db *gorm.DB, logger *slog.Logger) *Contacts {
	return &Contacts{db: db, logger: logger}
}

func (s *Contacts) List(ctx context.Context, teamID uuid.UUID) ([]models.Contact, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	contacts := []models.Contact{}
	if err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order(newestFirst).
		Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return contacts, nil
}

// Search matches contacts whose name contains every whitespace-separated
// token of term, ignoring case.
func (s *Contacts) Search(ctx context.Context, teamID uuid.UUID, term string) ([]models.Contact, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	contacts := []models.Contact{}
	tokens := strings.Fields(strings.ToLower(term))
	if len(tokens) == 0 {
		return contacts, nil
	}

	q := s.db.WithContext(ctx).Where("team_id = ?", teamID)
	for _, tok := range tokens {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(tok)+"%")
	}
	if err := q.Order(newestFirst).Limit(SearchLimit).Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("searching contacts: %w", err)
	}
	return contacts, nil
}

func (s *Contacts) Get(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	c, _, err := load[models.Contact](ctx, s.db, "contact", id)
	return c, err
}

func (s *Contacts) Create(ctx context.Context, teamID uuid.UUID, in ContactInput) (*models.Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}

	member, err := access.RequireMember(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}

	contact := models.Contact{
		TeamID:    teamID,
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Company:   strings.TrimSpace(in.Company),
		Address:   strings.TrimSpace(in.Address),
		Tags:      normalizeTags(in.Tags),
		Notes:     in.Notes,
		CreatedBy: member.User.ID,
	}
	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}

	s.logger.Info("contact created", "team_id", teamID, "contact_id", contact.ID, "by", member.User.ID)
	return &contact, nil
}

func (s *Contacts) Update(ctx context.Context, id uuid.UUID, patch ContactPatch) (*models.Contact, error) {
	updates, err := patch.updates()
	if err != nil {
		return nil, err
	}

	c, _, err := load[models.Contact](ctx, s.db, "contact", id)
	if err != nil {
		return nil, err
	}

	updates["updated_at"] = models.NowMillis()
	if err := s.db.WithContext(ctx).Model(&models.Contact{}).
		Where("id = ?", c.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating contact: %w", err)
	}
	return reload[models.Contact](ctx, s.db, c.ID)
}

// Remove deletes a contact. Contacts still referenced by a project are kept;
// links from tasks, activities and files are cleared.
func (s *Contacts) Remove(ctx context.Context, id uuid.UUID) error {
	c, member, err := load[models.Contact](ctx, s.db, "contact", id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var projects int64
		if err := tx.Model(&models.Project{}).Where("contact_id = ?", c.ID).Count(&projects).Error; err != nil {
			return err
		}
		if projects > 0 {
			return ErrContactInUse
		}

		for _, m := range []interface{}{&models.Task{}, &models.Activity{}, &models.File{}} {
			if err := tx.Model(m).Where("contact_id = ?", c.ID).Update("contact_id", nil).Error; err != nil {
				return fmt.Errorf("unlinking contact: %w", err)
			}
		}
		return tx.Delete(&models.Contact{}, "id = ?", c.ID).Error
	})
	if err != nil {
		return err
	}

	s.logger.Info("contact removed", "team_id", c.TeamID, "contact_id", c.ID, "by", member.User.ID)
	return nil
}

func setString(u map[string]interface{}, column string, v *string) {
	if v != nil {
		u[column] = strings.TrimSpace(*v)
	}
}

// normalizeTags trims each tag and drops blanks, keeping order.
func normalizeTags(in []string) models.Tags {
	out := make(models.Tags, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
