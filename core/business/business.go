package business

import (
	"context"
	"time"
	_ "time/tzdata" // embedded zoneinfo for time.LoadLocation

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/user"
)

var ErrNotFound = errors.New("business not found")

type (
	Business struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Timezone  string    `json:"timezone"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// NewBusiness registers a business along with its owner account.
	NewBusiness struct {
		Name     string       `json:"name" validate:"required,notblank,max=128"`
		Timezone string       `json:"timezone"`
		Owner    user.NewUser `json:"owner"`
	}

	Repository interface {
		CreateBusiness(ctx context.Context, biz Business, exec ...core.DBExecutor) (Business, error)
		GetBusiness(ctx context.Context, id string) (Business, error)
	}

	Service interface {
		Register(ctx context.Context, nb NewBusiness) (Business, user.User, error)
		GetByID(ctx context.Context, id string) (Business, error)
	}

	service struct {
		repo    Repository
		userSvc user.Service
		tx      core.Transactor
	}
)

func (nb *NewBusiness) Clean() {
	nb.Name = core.CleanString(nb.Name)
	nb.Timezone = core.CleanString(nb.Timezone)
	if nb.Timezone == "" {
		nb.Timezone = "UTC"
	}
	nb.Owner.Clean()
	nb.Owner.Roles = []string{user.RoleAdminOwner}
}

func (nb *NewBusiness) Validate(ctx context.Context, validate *validator.Validate, userSvc user.Service) error {
	nb.Clean()
	if err := validate.Struct(nb); err != nil {
		return err
	}
	if _, err := time.LoadLocation(nb.Timezone); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "timezone", Error: "unknown time zone"})
	}
	return userSvc.CheckUniqueness(ctx, nb.Owner.Username, nb.Owner.Email)
}

func NewService(repo Repository, userSvc user.Service, tx core.Transactor) Service {
	return &service{repo: repo, userSvc: userSvc, tx: tx}
}

// Register expects nb to be validated beforehand (see NewBusiness.Validate).
func (svc *service) Register(ctx context.Context, nb NewBusiness) (Business, user.User, error) {
	var (
		biz   Business
		owner user.User
	)
	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		var err error
		biz, err = svc.repo.CreateBusiness(ctx, Business{
			ID:        uuid.New().String(),
			Name:      nb.Name,
			Timezone:  nb.Timezone,
			CreatedAt: time.Now().UTC(),
		}, exec)
		if err != nil {
			return errors.Wrap(err, "creating business")
		}

		nb.Owner.BusinessID = biz.ID
		nb.Owner.Roles = []string{user.RoleAdminOwner}
		owner, err = svc.userSvc.Create(ctx, nb.Owner, exec)
		return errors.Wrap(err, "creating owner")
	})
	if err != nil {
		return Business{}, user.User{}, err
	}
	return biz, owner, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Business, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Business{}, ErrNotFound
	}
	return svc.repo.GetBusiness(ctx, id)
}
