package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/teams"
	"github.com/hugh/go-crm/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{access.ErrUnauthenticated, http.StatusUnauthorized, "Not authenticated"},
		{access.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{access.ErrNotMember, http.StatusForbidden, "Access denied: You are not a member of this team"},
		{access.ErrNotAdmin, http.StatusForbidden, "Access denied: Admin privileges required"},
		{access.ErrTeamNotFound, http.StatusNotFound, "Team not found"},
		{teams.ErrAlreadyMember, http.StatusConflict, "User is already a member of this team"},
		{teams.ErrCannotRemoveOwner, http.StatusConflict, "Cannot remove team owner"},
		{teams.ErrCannotChangeOwnerRole, http.StatusConflict, "Cannot change owner's role"},
		{teams.ErrInvalidName, http.StatusBadRequest, "Team name is required"},
		{fmt.Errorf("contact %w", crm.ErrNotFound), http.StatusNotFound, "Contact not found"},
		{crm.ErrContactInUse, http.StatusConflict, "Contact is referenced by projects"},
		{fmt.Errorf("%w: project does not belong to this team", crm.ErrInvalidReference), http.StatusUnprocessableEntity, "Invalid reference: project does not belong to this team"},
		{fmt.Errorf("%w: title is required", crm.ErrInvalidInput), http.StatusBadRequest, "Invalid input: title is required"},
		{auth.ErrUserExists, http.StatusConflict, "User already exists"},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, msg := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

type countingDenials map[string]int

func (c countingDenials) IncAccessDenied(reason string) { c[reason]++ }

func TestResponderError_RecordsDenials(t *testing.T) {
	denials := countingDenials{}
	rs := NewResponder(testutil.Logger(), denials)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	for _, err := range []error{access.ErrNotMember, access.ErrNotAdmin, access.ErrNotMember, crm.ErrContactInUse} {
		rs.Error(httptest.NewRecorder(), r, err)
	}

	assert.Equal(t, countingDenials{"not_member": 2, "not_admin": 1}, denials)
}

func TestResponderError_HidesInternalErrors(t *testing.T) {
	rs := NewResponder(testutil.Logger(), nil)
	rr := httptest.NewRecorder()

	rs.Error(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: relation \"contacts\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}

func TestDecode_BodyLimit(t *testing.T) {
	rs := NewResponder(testutil.Logger(), nil)
	body := `{"name":"` + strings.Repeat("a", maxBodySize) + `"}`
	rr := httptest.NewRecorder()

	var v struct{ Name string }
	ok := rs.decode(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &v)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
