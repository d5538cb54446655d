// Package testutil holds the fixtures shared by the test suites.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/business"
	"github.com/trezcool/rota/core/user"
	"github.com/trezcool/rota/services/logger"
)

// NewLogger returns a silent logger which reports nothing to Rollbar.
func NewLogger(conf *core.Config) core.Logger {
	lg := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	lg.Enable(false)
	return lg
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func CreateBusiness(t *testing.T, repo business.Repository, name string) business.Business {
	biz, err := repo.CreateBusiness(context.Background(), business.Business{
		ID:        uuid.New().String(),
		Name:      name,
		Timezone:  "UTC",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createBusiness() failed: %v", err)
	}
	return biz
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	businessID, name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Name:       name,
		Username:   uname,
		Email:      email,
		Roles:      roles,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}
