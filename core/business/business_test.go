package business_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/business"
	"github.com/trezcool/rota/core/user"
	"github.com/trezcool/rota/services/email"
	"github.com/trezcool/rota/storage/database/inmem"
	"github.com/trezcool/rota/tests"
)

type failingUserRepo struct {
	user.Repository
}

func (failingUserRepo) CreateUser(context.Context, user.User, ...core.DBExecutor) (user.User, error) {
	return user.User{}, errors.New("disk full")
}

// recordingBizRepo remembers the IDs of the businesses it created.
type recordingBizRepo struct {
	business.Repository
	created []string
}

func (repo *recordingBizRepo) CreateBusiness(ctx context.Context, biz business.Business, exec ...core.DBExecutor) (business.Business, error) {
	repo.created = append(repo.created, biz.ID)
	return repo.Repository.CreateBusiness(ctx, biz, exec...)
}

func newBusinessService(t *testing.T, db *inmemdb.DB, userRepo user.Repository) (business.Service, user.Service) {
	t.Helper()
	return newBusinessServiceWithRepo(t, db, inmemdb.NewBusinessRepository(db), userRepo)
}

func newBusinessServiceWithRepo(t *testing.T, db *inmemdb.DB, bizRepo business.Repository, userRepo user.Repository) (business.Service, user.Service) {
	t.Helper()
	conf := core.NewTestConfig()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, testutil.NewLogger(conf))
	userSvc := user.NewServiceMock(userRepo, mailSvc, conf)
	return business.NewService(bizRepo, userSvc, db), userSvc
}

func validNewBusiness() business.NewBusiness {
	return business.NewBusiness{
		Name:     " Corner Café ",
		Timezone: "Africa/Kinshasa",
		Owner: user.NewUser{
			Name:            "Olga",
			Email:           "olga@rota.test",
			Password:        "Sh1ft-W0rk!",
			PasswordConfirm: "Sh1ft-W0rk!",
			Roles:           []string{user.RoleEmployee},
		},
	}
}

func TestNewBusiness_Validate(t *testing.T) {
	validate := testutil.NewValidator()
	db := inmemdb.Open()
	_, userSvc := newBusinessService(t, db, inmemdb.NewUserRepository(db))
	ctx := context.Background()

	nb := validNewBusiness()
	nb.Timezone = ""
	require.NoError(t, nb.Validate(ctx, validate, userSvc))
	assert.Equal(t, "Corner Café", nb.Name)
	assert.Equal(t, "UTC", nb.Timezone)
	assert.Equal(t, []string{user.RoleAdminOwner}, nb.Owner.Roles)

	nb = validNewBusiness()
	nb.Name = "   "
	assert.Error(t, nb.Validate(ctx, validate, userSvc))

	nb = validNewBusiness()
	nb.Timezone = "Mars/Olympus"
	err := nb.Validate(ctx, validate, userSvc)
	verr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "timezone", verr.Fields[0].Field)
}

func TestService_Register(t *testing.T) {
	db := inmemdb.Open()
	svc, userSvc := newBusinessService(t, db, inmemdb.NewUserRepository(db))
	ctx := context.Background()

	nb := validNewBusiness()
	nb.Clean()
	biz, owner, err := svc.Register(ctx, nb)
	require.NoError(t, err)
	assert.Equal(t, "Corner Café", biz.Name)
	assert.Equal(t, biz.ID, owner.BusinessID)
	assert.Equal(t, []string{user.RoleAdminOwner}, owner.Roles)

	got, err := svc.GetByID(ctx, biz.ID)
	require.NoError(t, err)
	assert.Equal(t, biz, got)

	usr, err := userSvc.GetByEmail(ctx, "olga@rota.test")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, usr.ID)

	_, err = svc.GetByID(ctx, "nope")
	assert.Equal(t, business.ErrNotFound, err)
}

func TestService_Register_rollback(t *testing.T) {
	db := inmemdb.Open()
	bizRepo := &recordingBizRepo{Repository: inmemdb.NewBusinessRepository(db)}
	svc, _ := newBusinessServiceWithRepo(t, db, bizRepo, failingUserRepo{inmemdb.NewUserRepository(db)})

	nb := validNewBusiness()
	nb.Clean()
	biz, _, err := svc.Register(context.Background(), nb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating owner")
	assert.Empty(t, biz.ID)

	// the business row went away with the transaction
	require.Len(t, bizRepo.created, 1)
	_, err = bizRepo.GetBusiness(context.Background(), bizRepo.created[0])
	assert.Equal(t, business.ErrNotFound, err)
}
