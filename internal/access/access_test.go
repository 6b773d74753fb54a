package access_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/access"
	"github.com/hugh/go-crm/internal/database/models"
	"github.com/hugh/go-crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Ada")

	t.Run("no identity", func(t *testing.T) {
		_, err := access.CurrentUser(context.Background(), db)
		assert.ErrorIs(t, err, access.ErrUnauthenticated)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := access.CurrentUser(testutil.AsEmail("ghost@example.com"), db)
		assert.ErrorIs(t, err, access.ErrUserNotFound)
	})

	t.Run("resolves by email", func(t *testing.T) {
		got, err := access.CurrentUser(testutil.AsUser(user), db)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("unverified email is refused", func(t *testing.T) {
		pending := &models.User{Email: "pending@example.com", Name: "Pending", Role: models.UserRoleOwner}
		require.NoError(t, db.Create(pending).Error)

		_, err := access.CurrentUser(testutil.AsUser(pending), db)
		assert.ErrorIs(t, err, access.ErrEmailNotVerified)
		assert.ErrorIs(t, err, access.ErrAccessDenied)
	})
}

func TestRequireMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "Owner")
	member := testutil.CreateTestUser(t, db, "Member")
	outsider := testutil.CreateTestUser(t, db, "Outsider")

	team := testutil.CreateTestTeam(t, db, owner, "Acme")
	other := testutil.CreateTestTeam(t, db, outsider, "Globex")
	testutil.AddTestMember(t, db, team, member, models.MemberRoleMember)

	t.Run("member passes", func(t *testing.T) {
		got, err := access.RequireMember(testutil.AsUser(member), db, team.ID)
		require.NoError(t, err)
		assert.Equal(t, member.ID, got.User.ID)
		assert.Equal(t, team.ID, got.Membership.TeamID)
		assert.Equal(t, models.MemberRoleMember, got.Membership.Role)
	})

	t.Run("non-member is denied", func(t *testing.T) {
		_, err := access.RequireMember(testutil.AsUser(outsider), db, team.ID)
		assert.ErrorIs(t, err, access.ErrAccessDenied)
		assert.ErrorIs(t, err, access.ErrNotMember)
		assert.Equal(t, "access denied: you are not a member of this team", err.Error())
	})

	t.Run("membership in another team does not leak", func(t *testing.T) {
		_, err := access.RequireMember(testutil.AsUser(member), db, other.ID)
		assert.ErrorIs(t, err, access.ErrNotMember)
	})

	t.Run("unknown team is a plain denial", func(t *testing.T) {
		_, err := access.RequireMember(testutil.AsUser(owner), db, uuid.New())
		assert.ErrorIs(t, err, access.ErrNotMember)
	})

	t.Run("identity failures come first", func(t *testing.T) {
		_, err := access.RequireMember(context.Background(), db, team.ID)
		assert.ErrorIs(t, err, access.ErrUnauthenticated)

		_, err = access.RequireMember(testutil.AsEmail("ghost@example.com"), db, team.ID)
		assert.ErrorIs(t, err, access.ErrUserNotFound)
	})
}

func TestRequireAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "Owner")
	admin := testutil.CreateTestUser(t, db, "Admin")
	member := testutil.CreateTestUser(t, db, "Member")
	outsider := testutil.CreateTestUser(t, db, "Outsider")

	team := testutil.CreateTestTeam(t, db, owner, "Acme")
	testutil.AddTestMember(t, db, team, admin, models.MemberRoleAdmin)
	testutil.AddTestMember(t, db, team, member, models.MemberRoleMember)

	t.Run("admin passes", func(t *testing.T) {
		got, err := access.RequireAdmin(testutil.AsUser(admin), db, team.ID)
		require.NoError(t, err)
		assert.Equal(t, team.ID, got.Team.ID)
		assert.False(t, got.IsOwner())
	})

	t.Run("owner passes even when demoted to member", func(t *testing.T) {
		require.NoError(t, db.Model(&models.TeamMembership{}).
			Where("team_id = ? AND user_id = ?", team.ID, owner.ID).
			Update("role", models.MemberRoleMember).Error)

		got, err := access.RequireAdmin(testutil.AsUser(owner), db, team.ID)
		require.NoError(t, err)
		assert.True(t, got.IsOwner())
	})

	t.Run("member is denied", func(t *testing.T) {
		_, err := access.RequireAdmin(testutil.AsUser(member), db, team.ID)
		assert.ErrorIs(t, err, access.ErrAccessDenied)
		assert.ErrorIs(t, err, access.ErrNotAdmin)
	})

	t.Run("non-member is denied before the team is loaded", func(t *testing.T) {
		_, err := access.RequireAdmin(testutil.AsUser(outsider), db, team.ID)
		assert.ErrorIs(t, err, access.ErrNotMember)
	})

	t.Run("membership without team row", func(t *testing.T) {
		ghostTeam := &models.Team{Base: models.Base{ID: uuid.New()}}
		testutil.AddTestMember(t, db, ghostTeam, admin, models.MemberRoleAdmin)

		_, err := access.RequireAdmin(testutil.AsUser(admin), db, ghostTeam.ID)
		assert.ErrorIs(t, err, access.ErrTeamNotFound)
	})
}

func TestReason(t *testing.T) {
	assert.Equal(t, "unauthenticated", access.Reason(access.ErrUnauthenticated))
	assert.Equal(t, "user_not_found", access.Reason(access.ErrUserNotFound))
	assert.Equal(t, "not_member", access.Reason(access.ErrNotMember))
	assert.Equal(t, "not_admin", access.Reason(access.ErrNotAdmin))
	assert.Equal(t, "team_not_found", access.Reason(access.ErrTeamNotFound))
	assert.Equal(t, "unverified", access.Reason(access.ErrEmailNotVerified))
	assert.Equal(t, "", access.Reason(assert.AnError))
}
