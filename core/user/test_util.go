package user

import (
	"context"

	"github.com/trezcool/rota/core"
)

type serviceMock struct {
	*service
}

// NewServiceMock returns a Service which sends its emails synchronously.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &serviceMock{service: NewService(repo, mailSvc, conf).(*service)}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

// MakePasswordResetToken exposes the reset token of usr to tests.
func (svc *serviceMock) MakePasswordResetToken(usr User) string {
	return svc.tokens.makeToken(usr)
}
