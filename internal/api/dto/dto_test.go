package dto

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullable(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantNull  bool
		wantValue *uuid.UUID
	}{
		{"absent", `{}`, false, false, nil},
		{"null", `{"assigned_to": null}`, true, true, nil},
		{"value", `{"assigned_to": "` + id.String() + `"}`, true, false, &id},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateProjectRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			assert.Equal(t, tt.wantSet, req.AssignedTo.Set)
			assert.Equal(t, tt.wantNull, req.AssignedTo.Null())
			assert.Equal(t, tt.wantValue, req.AssignedTo.Ptr())

			patch := req.ToPatch()
			assert.Equal(t, tt.wantNull, patch.ClearAssignee)
			assert.Equal(t, tt.wantValue, patch.AssignedTo)
		})
	}

	t.Run("bad value", func(t *testing.T) {
		var req UpdateProjectRequest
		assert.Error(t, json.Unmarshal([]byte(`{"assigned_to": "nope"}`), &req))
	})
}

func TestUpdateTaskRequest_ClearsLinks(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"project_id": null, "due_date": null, "title": "Call back"}`), &req))
	require.Empty(t, req.Validate())

	patch := req.ToPatch()
	assert.True(t, patch.ClearProject)
	assert.True(t, patch.ClearDueDate)
	assert.False(t, patch.ClearContact)
	assert.False(t, patch.ClearAssignee)
	assert.Equal(t, "Call back", *patch.Title)
}

func TestRegisterRequest_Validate(t *testing.T) {
	errs := RegisterRequest{}.Validate()
	assert.Equal(t, "Email is required", errs["email"])
	assert.Equal(t, "Password is required", errs["password"])
	assert.Equal(t, "Name is required", errs["name"])

	errs = RegisterRequest{Email: "nope", Password: "password", Name: "Ada"}.Validate()
	assert.Equal(t, "Email is invalid", errs["email"])
	assert.Contains(t, errs["password"], "number, space or symbol")

	assert.Empty(t, RegisterRequest{Email: "ada@example.com", Password: "correct horse", Name: "Ada"}.Validate())
}

func TestAddMemberRequest_DefaultsRole(t *testing.T) {
	req := AddMemberRequest{Email: " b@example.com "}
	assert.Empty(t, req.Validate())
	assert.Equal(t, models.MemberRoleMember, req.Role)
	assert.Equal(t, "b@example.com", req.Email)

	req = AddMemberRequest{Email: "b@example.com", Role: "owner"}
	assert.Contains(t, req.Validate(), "role")
}

func TestCreateContactRequest_Validate(t *testing.T) {
	errs := CreateContactRequest{Name: " ", Email: "bad", Phone: "call me"}.Validate()
	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Email is invalid", errs["email"])
	assert.Equal(t, "Phone is invalid", errs["phone"])

	req := CreateContactRequest{Name: "Ada\x00 Lovelace", Email: " ada@example.com ", Tags: []string{"vip"}}
	require.Empty(t, req.Validate())
	in := req.ToInput()
	assert.Equal(t, "Ada Lovelace", in.Name)
	assert.Equal(t, "ada@example.com", in.Email)
}

func TestCreateProjectRequest_Validate(t *testing.T) {
	neg := -1.0
	start, end := int64(2000), int64(1000)

	errs := CreateProjectRequest{Status: "won", Value: &neg, StartDate: &start, EndDate: &end}.Validate()
	assert.Contains(t, errs, "contact_id")
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "status")
	assert.Contains(t, errs, "value")
	assert.Contains(t, errs, "end_date")

	assert.Empty(t, CreateProjectRequest{ContactID: uuid.New(), Title: "Kitchen"}.Validate())
}

func TestActivityRequests_Validate(t *testing.T) {
	errs := CreateActivityRequest{Type: "fax", Subject: ""}.Validate()
	assert.Equal(t, activityTypeMessage, errs["type"])
	assert.Equal(t, "Subject is required", errs["subject"])

	zero := int64(0)
	errs = UpdateActivityRequest{Date: &zero}.Validate()
	assert.Contains(t, errs, "date")
}
