package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/hugh/go-crm/internal/dashboard"
	"github.com/hugh/go-crm/internal/database/models"
	"github.com/hugh/go-crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	s := setupTestServer(t)
	_, memberToken := s.NewMember(t, models.MemberRoleMember)

	contact := testutil.CreateTestContact(t, s.DB, s.Team.ID, s.User, "Client")
	testutil.CreateTestProject(t, s.DB, contact, s.User, models.ProjectStatusActive, 1000)
	testutil.CreateTestProject(t, s.DB, contact, s.User, models.ProjectStatusCompleted, 500)
	testutil.CreateTestProject(t, s.DB, contact, s.User, models.ProjectStatusLead, 250)
	testutil.CreateTestTask(t, s.DB, s.Team.ID, s.User, models.TaskStatusTodo)
	testutil.CreateTestTask(t, s.DB, s.Team.ID, s.User, models.TaskStatusDone)

	base := time.Now().Add(-time.Hour).UnixMilli()
	for i := 0; i < 3; i++ {
		testutil.CreateTestActivity(t, s.DB, s.Team.ID, s.User, "Call", base+int64(i))
	}

	t.Run("stats", func(t *testing.T) {
		rr := s.call(t, http.MethodGet, s.teamPath("/dashboard/stats"), nil, memberToken)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var stats dashboard.Stats
		testutil.ParseJSONResponse(t, rr, &stats)
		assert.Equal(t, int64(1), stats.TotalContacts)
		assert.Equal(t, int64(3), stats.TotalProjects)
		assert.Equal(t, int64(1), stats.ActiveProjects)
		assert.Equal(t, int64(1), stats.CompletedProjects)
		assert.Equal(t, int64(1), stats.PendingTasks)
		assert.Equal(t, int64(2), stats.TotalTasks)
		assert.Equal(t, 1500.0, stats.TotalValue)
	})

	t.Run("pipeline lists every status", func(t *testing.T) {
		rr := s.call(t, http.MethodGet, s.teamPath("/dashboard/pipeline"), nil, memberToken)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var p dashboard.Pipeline
		testutil.ParseJSONResponse(t, rr, &p)
		assert.Len(t, p.Counts, 5)
		assert.Equal(t, int64(1), p.Counts[models.ProjectStatusLead])
		assert.Equal(t, int64(0), p.Counts[models.ProjectStatusQuote])
		assert.Equal(t, 250.0, p.Values[models.ProjectStatusLead])
		_, hasCancelledValue := p.Values[models.ProjectStatusCancelled]
		assert.False(t, hasCancelledValue)
	})

	t.Run("recent activities with limit", func(t *testing.T) {
		rr := s.call(t, http.MethodGet, s.teamPath("/dashboard/activities?limit=2"), nil, memberToken)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var recent []dashboard.RecentActivity
		testutil.ParseJSONResponse(t, rr, &recent)
		require.Len(t, recent, 2)
		assert.Equal(t, base+2, recent[0].CreatedAt)
		assert.Equal(t, "Owner", recent[0].UserName)
	})

	t.Run("bad limit", func(t *testing.T) {
		for _, q := range []string{"0", "-3", "ten"} {
			rr := s.call(t, http.MethodGet, s.teamPath("/dashboard/activities?limit="+q), nil, s.Token)
			testutil.AssertStatus(t, rr, http.StatusBadRequest)
		}
	})

	t.Run("outsider", func(t *testing.T) {
		_, token := s.Outsider(t)
		for _, p := range []string{"/dashboard/stats", "/dashboard/pipeline", "/dashboard/activities"} {
			rr := s.call(t, http.MethodGet, s.teamPath(p), nil, token)
			testutil.AssertStatus(t, rr, http.StatusForbidden)
		}
	})
}
