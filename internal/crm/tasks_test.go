package crm_test

import (
	"testing"

	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/database/models"
	"github.com/hugh/go-crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasks_CreateDefaults(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewTasks(ts.DB, testutil.Logger())
	ctx := testutil.AsUser(ts.User)

	task, err := svc.Create(ctx, ts.Team.ID, crm.TaskInput{Title: "Call back"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Nil(t, task.ProjectID)
	assert.Equal(t, ts.User.ID, task.CreatedBy)

	_, err = svc.Create(ctx, ts.Team.ID, crm.TaskInput{Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, crm.ErrInvalidInput)

	_, err = svc.Create(ctx, ts.Team.ID, crm.TaskInput{Title: "x", Status: "blocked"})
	assert.ErrorIs(t, err, crm.ErrInvalidInput)
}

func TestTasks_UpdateAndClearLinks(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewTasks(ts.DB, testutil.Logger())
	ctx := testutil.AsUser(ts.User)
	contact := testutil.CreateTestContact(t, ts.DB, ts.Team.ID, ts.User, "Client")
	project := testutil.CreateTestProject(t, ts.DB, contact, ts.User, models.ProjectStatusQuote, 500)

	due := int64(1800000000000)
	before, err := svc.Create(ctx, ts.Team.ID, crm.TaskInput{
		Title:      "Send quote",
		ProjectID:  &project.ID,
		ContactID:  &contact.ID,
		DueDate:    &due,
		AssignedTo: &ts.User.ID,
		Priority:   models.TaskPriorityHigh,
	})
	require.NoError(t, err)

	done := models.TaskStatusDone
	after, err := svc.Update(ctx, before.ID, crm.TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, after.Status)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Priority, after.Priority)
	assert.Equal(t, before.DueDate, after.DueDate)
	assert.Equal(t, before.ProjectID, after.ProjectID)
	assert.Equal(t, before.ContactID, after.ContactID)
	assert.Equal(t, before.AssignedTo, after.AssignedTo)

	cleared, err := svc.Update(ctx, before.ID, crm.TaskPatch{
		ClearProject:  true,
		ClearContact:  true,
		ClearDueDate:  true,
		ClearAssignee: true,
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.ProjectID)
	assert.Nil(t, cleared.ContactID)
	assert.Nil(t, cleared.DueDate)
	assert.Nil(t, cleared.AssignedTo)
	assert.Equal(t, models.TaskStatusDone, cleared.Status)
}

func TestTasks_ListFilters(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewTasks(ts.DB, testutil.Logger())
	ctx := testutil.AsUser(ts.User)
	member, _ := ts.NewMember(t, models.MemberRoleMember)

	testutil.CreateTestTask(t, ts.DB, ts.Team.ID, ts.User, models.TaskStatusTodo)
	testutil.CreateTestTask(t, ts.DB, ts.Team.ID, ts.User, models.TaskStatusDone)
	_, err := svc.Create(ctx, ts.Team.ID, crm.TaskInput{Title: "Theirs", AssignedTo: &member.ID})
	require.NoError(t, err)

	todo, err := svc.List(ctx, ts.Team.ID, crm.TaskFilter{Status: models.TaskStatusTodo})
	require.NoError(t, err)
	assert.Len(t, todo, 2)

	mine, err := svc.List(ctx, ts.Team.ID, crm.TaskFilter{AssignedTo: &member.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Theirs", mine[0].Title)

	// Tasks from another team never show up.
	other := testutil.CreateTestTeam(t, ts.DB, ts.User, "Other")
	testutil.CreateTestTask(t, ts.DB, other.ID, ts.User, models.TaskStatusTodo)
	all, err := svc.List(ctx, ts.Team.ID, crm.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTasks_Remove(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewTasks(ts.DB, testutil.Logger())
	ctx := testutil.AsUser(ts.User)
	task := testutil.CreateTestTask(t, ts.DB, ts.Team.ID, ts.User, models.TaskStatusTodo)

	require.NoError(t, svc.Remove(ctx, task.ID))
	err := svc.Remove(ctx, task.ID)
	assert.ErrorIs(t, err, crm.ErrNotFound)
}
