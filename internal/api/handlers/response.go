package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/api/middleware"
	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/teams"
	"github.com/hugh/go-crm/internal/users"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

// DenialRecorder counts guard rejections by reason.
type DenialRecorder interface {
	IncAccessDenied(reason string)
}

// Responder writes JSON bodies and maps service errors onto HTTP statuses.
type Responder struct {
	logger  *slog.Logger
	denials DenialRecorder
}

func NewResponder(logger *slog.Logger, denials DenialRecorder) *Responder {
	return &Responder{logger: logger, denials: denials}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (rs *Responder) fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

func (rs *Responder) invalid(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: details})
}

// Error writes the response for err. Unknown errors become a generic 500
// and are logged with the request id.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	if reason := access.Reason(err); reason != "" && rs.denials != nil {
		rs.denials.IncAccessDenied(reason)
	}

	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		rs.logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
	}
	rs.fail(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, access.ErrUnauthenticated):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, access.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, access.ErrNotMember):
		return http.StatusForbidden, "Access denied: You are not a member of this team"
	case errors.Is(err, access.ErrNotAdmin):
		return http.StatusForbidden, "Access denied: Admin privileges required"
	case errors.Is(err, access.ErrEmailNotVerified):
		return http.StatusForbidden, "Email address has not been verified"
	case errors.Is(err, access.ErrAccessDenied):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, access.ErrTeamNotFound):
		return http.StatusNotFound, "Team not found"

	case errors.Is(err, teams.ErrAlreadyMember):
		return http.StatusConflict, "User is already a member of this team"
	case errors.Is(err, teams.ErrMemberNotFound):
		return http.StatusNotFound, "Member not found"
	case errors.Is(err, teams.ErrCannotChangeOwnerRole):
		return http.StatusConflict, "Cannot change owner's role"
	case errors.Is(err, teams.ErrCannotRemoveOwner):
		return http.StatusConflict, "Cannot remove team owner"
	case errors.Is(err, teams.ErrInvalidRole), errors.Is(err, teams.ErrInvalidName):
		return http.StatusBadRequest, sentence(err)

	case errors.Is(err, crm.ErrNotFound):
		return http.StatusNotFound, sentence(err)
	case errors.Is(err, crm.ErrContactInUse):
		return http.StatusConflict, "Contact is referenced by projects"
	case errors.Is(err, crm.ErrInvalidReference):
		return http.StatusUnprocessableEntity, sentence(err)
	case errors.Is(err, crm.ErrInvalidInput):
		return http.StatusBadRequest, sentence(err)

	case errors.Is(err, users.ErrInvalidEmail):
		return http.StatusBadRequest, "Email is required"
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrAccountNotVerified):
		return http.StatusForbidden, "Email address has not been verified"
	case errors.Is(err, auth.ErrInvalidVerification):
		return http.StatusBadRequest, "Invalid or expired verification token"
	case errors.Is(err, auth.ErrUnknownUser):
		return http.StatusNotFound, "User not found"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// sentence capitalizes a service error message for display.
func sentence(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// decode reads a JSON body into v, enforcing the size cap. It writes the
// 400 itself and reports false on failure.
func (rs *Responder) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		rs.fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

type validator interface {
	Validate() map[string]string
}

// bind decodes and validates a request body.
func (rs *Responder) bind(w http.ResponseWriter, r *http.Request, req validator) bool {
	if !rs.decode(w, r, req) {
		return false
	}
	if errs := req.Validate(); len(errs) > 0 {
		rs.invalid(w, errs)
		return false
	}
	return true
}

// urlID parses a uuid URL parameter, writing a 400 when it is malformed.
func (rs *Responder) urlID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		rs.invalid(w, map[string]string{name: "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional uuid query parameter.
func (rs *Responder) queryID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		rs.invalid(w, map[string]string{name: "Invalid id"})
		return nil, false
	}
	return &id, true
}

// writeList encodes a nil slice as [] rather than null.
func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}
