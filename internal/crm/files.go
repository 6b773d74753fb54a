package crm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/blob"
	"github.com/hugh/go-crm/internal/database/models"
	"gorm.io/gorm"
)

type FileInput struct {
	Name        string
	ContentType string
	ProjectID   *uuid.UUID
	ContactID   *uuid.UUID
}

type FilePatch struct {
	Name         *string
	ProjectID    *uuid.UUID
	ContactID    *uuid.UUID
	ClearProject bool
	ClearContact bool
}

type FileFilter struct {
	ProjectID *uuid.UUID
	ContactID *uuid.UUID
}

type Files struct {
	db     *gorm.DB
	store  blob.Store
	logger *slog.Logger
}

func NewFiles(db *gorm.DB, store blob.Store, logger *slog.Logger) *Files {
	return &Files{db: db, store: store, logger: logger}
}

// StorageKey is the opaque blob key for a new attachment.
func StorageKey(teamID uuid.UUID) string {
	return path.Join("teams", teamID.String(), uuid.NewString())
}

func (s *Files) List(ctx context.Context, teamID uuid.UUID, f FileFilter) ([]models.File, error) {
	if _, err := access.RequireMember(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("team_id = ?", teamID)
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.ContactID != nil {
		q = q.Where("contact_id = ?", *f.ContactID)
	}

	files := []models.File{}
	if err := q.Order(newestFirst).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return files, nil
}

func (s *Files) Get(ctx context.Context, id uuid.UUID) (*models.File, error) {
	f, _, err := load[models.File](ctx, s.db, "file", id)
	return f, err
}

// Create stores body in the blob store, then records its metadata. The blob
// is removed again if the metadata cannot be written.
func (s *Files) Create(ctx context.Context, teamID uuid.UUID, in FileInput, body io.Reader) (*models.File, error) {
	name := strings.TrimSpace(path.Base(strings.ReplaceAll(in.Name, `\`, "/")))
	if name == "" || name == "." || name == "/" {
		return nil, invalid("file name is required")
	}
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
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

	key := StorageKey(teamID)
	counter := &countingReader{r: body}
	if err := s.store.Put(ctx, key, counter, in.ContentType); err != nil {
		return nil, fmt.Errorf("storing file: %w", err)
	}

	file := models.File{
		TeamID:      teamID,
		ProjectID:   in.ProjectID,
		ContactID:   in.ContactID,
		StorageID:   key,
		Name:        name,
		ContentType: in.ContentType,
		Size:        counter.n,
		UploadedBy:  member.User.ID,
	}
	if err := s.db.WithContext(ctx).Create(&file).Error; err != nil {
		if derr := s.store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.logger.Error("failed to remove orphaned blob", "storage_id", key, "error", derr)
		}
		return nil, fmt.Errorf("creating file: %w", err)
	}

	s.logger.Info("file uploaded", "team_id", teamID, "file_id", file.ID, "size", file.Size, "by", member.User.ID)
	return &file, nil
}

// Open returns the file metadata and a reader over its content. The caller
// closes the reader.
func (s *Files) Open(ctx context.Context, id uuid.UUID) (*models.File, io.ReadCloser, error) {
	f, _, err := load[models.File](ctx, s.db, "file", id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Get(ctx, f.StorageID)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, fmt.Errorf("file content %w", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("opening file: %w", err)
	}
	return f, rc, nil
}

// Update renames a file or changes its links. Content is immutable.
func (s *Files) Update(ctx context.Context, id uuid.UUID, patch FilePatch) (*models.File, error) {
	f, _, err := load[models.File](ctx, s.db, "file", id)
	if err != nil {
		return nil, err
	}

	refs := refChecker{ctx: ctx, db: s.db, teamID: f.TeamID}
	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("file name is required")
		}
		updates["name"] = name
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
	linkUpdate(updates, "project_id", patch.ProjectID, patch.ClearProject)
	linkUpdate(updates, "contact_id", patch.ContactID, patch.ClearContact)

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.File{}).
			Where("id = ?", f.ID).
			Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating file: %w", err)
		}
	}
	return reload[models.File](ctx, s.db, f.ID)
}

// Remove deletes the metadata row, then the blob. A failed blob delete is
// logged and leaves an unreferenced object behind.
func (s *Files) Remove(ctx context.Context, id uuid.UUID) error {
	f, member, err := load[models.File](ctx, s.db, "file", id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.File{}, "id = ?", f.ID).Error; err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	if err := s.store.Delete(ctx, f.StorageID); err != nil {
		s.logger.Error("failed to delete blob", "file_id", f.ID, "storage_id", f.StorageID, "error", err)
	}

	s.logger.Info("file removed", "team_id", f.TeamID, "file_id", f.ID, "by", member.User.ID)
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
