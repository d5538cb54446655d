package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/user"
	"github.com/trezcool/rota/tests"
)

func TestService_Create(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		BusinessID: "biz",
		Name:       "Jane",
		Email:      "jane@rota.test",
		Password:   "Sh1ft-W0rk!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, []string{user.RoleEmployee}, usr.Roles)
	assert.True(t, usr.Active())
	assert.NoError(t, usr.CheckPassword("Sh1ft-W0rk!"))

	got, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.Email, got.Email)

	_, err = svc.GetByID(ctx, "not-a-uuid")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_Query(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	owner := testutil.CreateUser(t, repo, "biz", "Olga", "olga", "olga@rota.test", "", []string{user.RoleAdminOwner}, true, now.Add(-3*time.Hour))
	bob := testutil.CreateUser(t, repo, "biz", "Bob", "bob", "bob@rota.test", "", []string{user.RoleEmployee}, true, now.Add(-2*time.Hour))
	ann := testutil.CreateUser(t, repo, "biz", "Ann", "ann", "ann@rota.test", "", []string{user.RoleEmployee}, false, now.Add(-time.Hour))
	testutil.CreateUser(t, repo, "other", "Bobby", "bobby", "bobby@rota.test", "", []string{user.RoleEmployee}, true)

	active := true
	tests := []struct {
		name     string
		filter   user.QueryFilter
		ordering []core.DBOrdering
		want     []user.User
	}{
		{name: "business", filter: user.QueryFilter{BusinessID: "biz"}, want: []user.User{owner, bob, ann}},
		{name: "search", filter: user.QueryFilter{BusinessID: "biz", Search: " BOB "}, want: []user.User{bob}},
		{name: "roles", filter: user.QueryFilter{BusinessID: "biz", Roles: []string{user.RoleAdmin}}, want: []user.User{owner}},
		{name: "active", filter: user.QueryFilter{BusinessID: "biz", IsActive: &active}, want: []user.User{owner, bob}},
		{name: "created from", filter: user.QueryFilter{BusinessID: "biz", CreatedFrom: now.Add(-150 * time.Minute)}, want: []user.User{bob, ann}},
		{
			name:     "by name",
			filter:   user.QueryFilter{BusinessID: "biz"},
			ordering: []core.DBOrdering{{Field: "name", Ascending: true}},
			want:     []user.User{ann, bob, owner},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(ctx, tt.filter, tt.ordering...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Update(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "biz", "Jane", "jane", "jane@rota.test", "Old-Pwd-123", []string{user.RoleEmployee}, true)

	inactive := false
	updated, err := svc.Update(ctx, usr, user.UpdateUser{
		Name:     "Jane D.",
		Username: "jane",
		Email:    "jane@rota.test",
		JobTitle: "Barista",
		IsActive: &inactive,
		Roles:    []string{user.RoleAdminManager},
		Password: "N3w-Pwd-456!",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane D.", updated.Name)
	assert.Equal(t, "Barista", updated.JobTitle)
	assert.False(t, updated.Active())
	assert.True(t, updated.IsAdmin())
	assert.NoError(t, updated.CheckPassword("N3w-Pwd-456!"))

	logged, err := svc.SetLastLogin(ctx, updated)
	require.NoError(t, err)
	assert.False(t, logged.LastLogin.IsZero())
}

func TestService_Delete(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	jane := testutil.CreateUser(t, repo, "biz", "Jane", "jane", "jane@rota.test", "", nil, true)
	john := testutil.CreateUser(t, repo, "other", "John", "john", "john@rota.test", "", nil, true)

	require.NoError(t, svc.Delete(ctx, "biz", jane.ID, john.ID))

	_, err := svc.GetByID(ctx, jane.ID)
	assert.Equal(t, user.ErrNotFound, err)
	// users of other businesses are left alone
	_, err = svc.GetByID(ctx, john.ID)
	assert.NoError(t, err)
}

func TestService_PasswordReset(t *testing.T) {
	svc, repo, mailSvc := newService(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "biz", "Jane", "jane", "jane@rota.test", "Old-Pwd-123", nil, true)

	assert.Equal(t, user.ErrNotFound, svc.RequestPasswordReset(ctx, "nobody@rota.test"))
	require.NoError(t, svc.RequestPasswordReset(ctx, " JANE@rota.test "))

	sent := mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "jane@rota.test", sent[0].To[0].Address)
	data := sent[0].TemplateData.(map[string]string)
	assert.Equal(t, user.EncodeUID(usr), data["UID"])
	assert.Contains(t, sent[0].TextContent, data["Token"])

	_, err := svc.ResetPassword(ctx, user.ResetUserPassword{UID: data["UID"], Token: "bad-token"})
	assert.Equal(t, user.ErrInvalidToken, err)
	_, err = svc.ResetPassword(ctx, user.ResetUserPassword{UID: "!!", Token: data["Token"]})
	assert.Equal(t, user.ErrInvalidToken, err)

	reset, err := svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:      data["UID"],
		Token:    data["Token"],
		Password: "N3w-Pwd-456!",
	})
	require.NoError(t, err)
	assert.NoError(t, reset.CheckPassword("N3w-Pwd-456!"))

	// the token dies with the old password
	_, err = svc.ResetPassword(ctx, user.ResetUserPassword{UID: data["UID"], Token: data["Token"], Password: "x"})
	assert.Equal(t, user.ErrInvalidToken, err)
}
