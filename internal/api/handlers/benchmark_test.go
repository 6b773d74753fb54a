package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/api/dto"
	"github.com/hugh/go-crm/internal/database/models"
)

func benchContacts(n int) []models.Contact {
	teamID, userID := uuid.New(), uuid.New()
	now := time.Now().UnixMilli()
	contacts := make([]models.Contact, n)
	for i := range contacts {
		contacts[i] = models.Contact{
			Base:      models.Base{ID: uuid.New(), CreatedAt: now},
			TeamID:    teamID,
			Name:      fmt.Sprintf("Contact %d", i),
			Email:     fmt.Sprintf("contact%d@example.com", i),
			Company:   "Acme Renovations",
			Tags:      models.Tags{"kitchen", "referral"},
			CreatedBy: userID,
			UpdatedAt: now,
		}
	}
	return contacts
}

// BenchmarkJSONSerialization benchmarks JSON encoding of common response types
func BenchmarkJSONSerialization(b *testing.B) {
	b.Run("ErrorResponse", func(b *testing.B) {
		resp := dto.ErrorResponse{
			Error: "Validation failed",
			Details: map[string]string{
				"name":  "Name is required",
				"email": "Invalid email format",
			},
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})

	b.Run("SingleProject", func(b *testing.B) {
		value := 12500.0
		start := time.Now().UnixMilli()
		assignee := uuid.New()
		p := models.Project{
			Base:       models.Base{ID: uuid.New(), CreatedAt: start},
			TeamID:     uuid.New(),
			ContactID:  uuid.New(),
			Title:      "Kitchen remodel",
			Status:     models.ProjectStatusActive,
			Value:      &value,
			StartDate:  &start,
			AssignedTo: &assignee,
			CreatedBy:  uuid.New(),
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(p)
		}
	})

	b.Run("ContactList100", func(b *testing.B) {
		contacts := benchContacts(100)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(contacts)
		}
	})
}

func BenchmarkRequestParsing(b *testing.B) {
	b.Run("CreateContactRequest", func(b *testing.B) {
		body := []byte(`{"name":"Jane Doe","email":"jane@example.com","phone":"+1 555 0100","tags":["kitchen","referral"]}`)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.CreateContactRequest
			_ = json.Unmarshal(body, &req)
		}
	})

	b.Run("UpdateTaskRequestWithNulls", func(b *testing.B) {
		body := []byte(`{"title":"Call back","project_id":null,"due_date":null,"assigned_to":"` + uuid.NewString() + `"}`)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.UpdateTaskRequest
			_ = json.Unmarshal(body, &req)
		}
	})

	b.Run("CreateContactRequestWithDecoder", func(b *testing.B) {
		body := `{"name":"Jane Doe","email":"jane@example.com"}`
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.CreateContactRequest
			_ = json.NewDecoder(strings.NewReader(body)).Decode(&req)
		}
	})
}

func BenchmarkRequestValidation(b *testing.B) {
	b.Run("RegisterRequestValid", func(b *testing.B) {
		req := dto.RegisterRequest{Email: "jane@example.com", Password: "correct horse", Name: "Jane"}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = req.Validate()
		}
	})

	b.Run("CreateContactRequestInvalid", func(b *testing.B) {
		req := dto.CreateContactRequest{Email: "not-an-email", Phone: "abc"}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = req.Validate()
		}
	})

	b.Run("CreateProjectRequestValid", func(b *testing.B) {
		value := 5000.0
		req := dto.CreateProjectRequest{ContactID: uuid.New(), Title: "Deck", Status: models.ProjectStatusQuote, Value: &value}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = req.Validate()
		}
	})
}

func BenchmarkWriteJSON(b *testing.B) {
	b.Run("SmallResponse", func(b *testing.B) {
		resp := dto.SuccessResponse{Message: "Role updated"}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := httptest.NewRecorder()
			writeJSON(w, 200, resp)
		}
	})

	b.Run("ContactList100", func(b *testing.B) {
		contacts := benchContacts(100)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := httptest.NewRecorder()
			writeList(w, contacts)
		}
	})
}

func BenchmarkDecode(b *testing.B) {
	rs := NewResponder(nil, nil)
	body := []byte(`{"name":"Jane Doe","email":"jane@example.com","tags":["a","b"]}`)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := httptest.NewRequest("POST", "/api/v1/teams/x/contacts", bytes.NewReader(body))
		w := httptest.NewRecorder()
		var req dto.CreateContactRequest
		_ = rs.bind(w, r, &req)
	}
}
