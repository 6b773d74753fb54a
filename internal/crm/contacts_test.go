package crm_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/database/models"
	"github.com/hugh/go-crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestContacts_CreateAndListByMember(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewContacts(ts.DB, testutil.Logger())
	m, _ := ts.NewMember(t, models.MemberRoleMember)
	asM := testutil.AsUser(m)

	created, err := svc.Create(asM, ts.Team.ID, crm.ContactInput{
		Name: "Mary Jackson",
		Tags: []string{"VIP", "referral"},
	})
	require.NoError(t, err)
	assert.Equal(t, m.ID, created.CreatedBy)
	assert.NotZero(t, created.CreatedAt)

	list, err := svc.List(asM, ts.Team.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, models.Tags{"VIP", "referral"}, list[0].Tags)
	assert.Equal(t, m.ID, list[0].CreatedBy)
}

func TestContacts_CreateValidation(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewContacts(ts.DB, testutil.Logger())

	_, err := svc.Create(testutil.AsUser(ts.User), ts.Team.ID, crm.ContactInput{Name: "  "})
	assert.ErrorIs(t, err, crm.ErrInvalidInput)

	c, err := svc.Create(testutil.AsUser(ts.User), ts.Team.ID, crm.ContactInput{Name: "Dorothy", Tags: []string{" lead ", ""}})
	require.NoError(t, err)
	assert.Equal(t, models.Tags{"lead"}, c.Tags)
}

func TestContacts_ListNewestFirst(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewContacts(ts.DB, testutil.Logger())

	for i, name := range []string{"Oldest", "Middle", "Newest"} {
		c := &models.Contact{
			Base:      models.Base{CreatedAt: int64(1000 * (i + 1))},
			TeamID:    ts.Team.ID,
			Name:      name,
			CreatedBy: ts.User.ID,
		}
		require.NoError(t, ts.DB.Create(c).Error)
	}

	list, err := svc.List(testutil.AsUser(ts.User), ts.Team.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Newest", list[0].Name)
	assert.Equal(t, "Oldest", list[2].Name)
	assert.Empty(t, list[2].Tags)
}

func TestContacts_UpdateLeavesOtherFields(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewContacts(ts.DB, testutil.Logger())
	ctx := testutil.AsUser(ts.User)

	before, err := svc.Create(ctx, ts.Team.ID, crm.ContactInput{
		Name:    "Katherine",
		Email:   "kj@example.com",
		Phone:   "555-0100",
		Company: "NACA",
		Address: "Hampton, VA",
		Tags:    []string{"engineering"},
		Notes:   "prefers email",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, before.ID, crm.ContactPatch{Phone: strPtr("555-0199")})
	require.NoError(t, err)

	after, err := svc.Get(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", after.Phone)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Email, after.Email)
	assert.Equal(t, before.Company, after.Company)
	assert.Equal(t, before.Address, after.Address)
	assert.Equal(t, before.Tags, after.Tags)
	assert.Equal(t, before.Notes, after.Notes)
	assert.Equal(t, before.CreatedBy, after.CreatedBy)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, before.TeamID, after.TeamID)
	assert.GreaterOrEqual(t, after.UpdatedAt, before.UpdatedAt)

	t.Run("tags replace the whole set", func(t *testing.T) {
		tags := []string{"a", "b"}
		got, err := svc.Update(ctx, before.ID, crm.ContactPatch{Tags: &tags})
		require.NoError(t, err)
		assert.Equal(t, models.Tags{"a", "b"}, got.Tags)
		assert.Equal(t, "555-0199", got.Phone)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, before.ID, crm.ContactPatch{Name: strPtr(" ")})
		assert.ErrorIs(t, err, crm.ErrInvalidInput)
	})
}

func TestContacts_Search(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewContacts(ts.DB, testutil.Logger())
	ctx := testutil.AsUser(ts.User)

	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Ada Yonath", "100% Pure_Co"} {
		testutil.CreateTestContact(t, ts.DB, ts.Team.ID, ts.User, name)
	}
	other := testutil.CreateTestTeam(t, ts.DB, ts.User, "Other")
	testutil.CreateTestContact(t, ts.DB, other.ID, ts.User, "Ada Other Team")

	names := func(cs []models.Contact) []string {
		out := []string{}
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}

	got, err := svc.Search(ctx, ts.Team.ID, "ada")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Ada Lovelace", "Ada Yonath"}, names(got))

	got, err = svc.Search(ctx, ts.Team.ID, "LOVE ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Lovelace"}, names(got))

	got, err = svc.Search(ctx, ts.Team.ID, "   ")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Search(ctx, ts.Team.ID, "0%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Pure_Co"}, names(got))

	got, err = svc.Search(ctx, ts.Team.ID, "a_l")
	require.NoError(t, err)
	assert.Empty(t, got, "underscore is literal")

	outsider, _ := ts.Outsider(t)
	_, err = svc.Search(testutil.AsUser(outsider), ts.Team.ID, "ada")
	assert.ErrorIs(t, err, access.ErrNotMember)
}

func TestContacts_GetChecksRowTeam(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewContacts(ts.DB, testutil.Logger())

	stranger := testutil.CreateTestUser(t, ts.DB, "Stranger")
	foreign := testutil.CreateTestTeam(t, ts.DB, stranger, "Foreign")
	secret := testutil.CreateTestContact(t, ts.DB, foreign.ID, stranger, "Secret")

	_, err := svc.Get(testutil.AsUser(ts.User), secret.ID)
	assert.ErrorIs(t, err, access.ErrNotMember)

	_, err = svc.Update(testutil.AsUser(ts.User), secret.ID, crm.ContactPatch{Name: strPtr("Pwned")})
	assert.ErrorIs(t, err, access.ErrNotMember)

	err = svc.Remove(testutil.AsUser(ts.User), secret.ID)
	assert.ErrorIs(t, err, access.ErrNotMember)

	_, err = svc.Get(testutil.AsUser(ts.User), uuid.New())
	assert.ErrorIs(t, err, crm.ErrNotFound)
	assert.EqualError(t, err, "contact not found")
}

func TestContacts_RemovePolicy(t *testing.T) {
	ts := testutil.NewTestContext(t)
	svc := crm.NewContacts(ts.DB, testutil.Logger())
	ctx := testutil.AsUser(ts.User)

	contact := testutil.CreateTestContact(t, ts.DB, ts.Team.ID, ts.User, "Client")
	project := testutil.CreateTestProject(t, ts.DB, contact, ts.User, models.ProjectStatusActive, 100)

	task := testutil.CreateTestTask(t, ts.DB, ts.Team.ID, ts.User, models.TaskStatusTodo)
	require.NoError(t, ts.DB.Model(task).Update("contact_id", contact.ID).Error)
	activity := testutil.CreateTestActivity(t, ts.DB, ts.Team.ID, ts.User, "Intro call", 1000)
	require.NoError(t, ts.DB.Model(activity).Update("contact_id", contact.ID).Error)

	err := svc.Remove(ctx, contact.ID)
	assert.ErrorIs(t, err, crm.ErrContactInUse)

	_, err = svc.Get(ctx, contact.ID)
	require.NoError(t, err, "restricted delete keeps the contact")

	require.NoError(t, ts.DB.Delete(project).Error)
	require.NoError(t, svc.Remove(ctx, contact.ID))

	_, err = svc.Get(ctx, contact.ID)
	assert.ErrorIs(t, err, crm.ErrNotFound)

	var reloadedTask models.Task
	require.NoError(t, ts.DB.First(&reloadedTask, "id = ?", task.ID).Error)
	assert.Nil(t, reloadedTask.ContactID)

	var reloadedActivity models.Activity
	require.NoError(t, ts.DB.First(&reloadedActivity, "id = ?", activity.ID).Error)
	assert.Nil(t, reloadedActivity.ContactID)
}
