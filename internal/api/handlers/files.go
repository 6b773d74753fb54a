package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/crm"
)

// multipartMemory is how much of an upload is held in memory before the
// rest spills to a temp file.
const multipartMemory = 8 << 20

type FileHandler struct {
	files     *crm.Files
	rs        *Responder
	maxUpload int64
}

func NewFileHandler(files *crm.Files, rs *Responder, maxUpload int64) *FileHandler {
	return &FileHandler{files: files, rs: rs, maxUpload: maxUpload}
}

// List handles GET /api/v1/teams/{teamID}/files?project_id=&contact_id=
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	var filter crm.FileFilter
	if filter.ProjectID, ok = h.rs.queryID(w, r, "project_id"); !ok {
		return
	}
	if filter.ContactID, ok = h.rs.queryID(w, r, "contact_id"); !ok {
		return
	}

	list, err := h.files.List(r.Context(), teamID, filter)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeList(w, list)
}

// Upload handles POST /api/v1/teams/{teamID}/files as multipart/form-data
// with a "file" part and optional project_id and contact_id fields.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.rs.urlID(w, r, "teamID")
	if !ok {
		return
	}

	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.rs.fail(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		h.rs.fail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		h.rs.invalid(w, map[string]string{"file": "File is required"})
		return
	}
	defer part.Close()

	if header.Size > h.maxUpload {
		h.rs.fail(w, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}

	in := crm.FileInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
	details := map[string]string{}
	in.ProjectID = formID(r, "project_id", details)
	in.ContactID = formID(r, "contact_id", details)
	if len(details) > 0 {
		h.rs.invalid(w, details)
		return
	}

	file, err := h.files.Create(r.Context(), teamID, in, part)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func formID(r *http.Request, name string, details map[string]string) *uuid.UUID {
	raw := r.FormValue(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		details[name] = "Invalid id"
		return nil
	}
	return &id
}

// Get handles GET /api/v1/files/{id}
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	file, err := h.files.Get(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// Content handles GET /api/v1/files/{id}/content, streaming the stored bytes.
func (h *FileHandler) Content(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	file, body, err := h.files.Open(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		// Headers are gone; all that is left is to record it.
		h.rs.logger.Warn("file download interrupted", "file_id", file.ID, "error", err)
	}
}

// Update handles PATCH /api/v1/files/{id}
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateFileRequest
	if !h.rs.bind(w, r, &req) {
		return
	}

	file, err := h.files.Update(r.Context(), id, req.ToPatch())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// Delete handles DELETE /api/v1/files/{id}
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rs.urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.files.Remove(r.Context(), id); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
