package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/user"
)

type newUserData struct {
	businessID string
	name       string
	username   string
	email      string
	password   string
	isAdmin    bool
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(ctx context.Context, data newUserData) (user.User, error) {
	uname := core.CleanString(data.username, true /* lower */)
	email := core.CleanString(data.email, true /* lower */)

	usr, err := cli.findUser(ctx, uname, email)
	exists := err == nil
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return user.User{}, err
		}
		if data.businessID == "" {
			return user.User{}, errNoBusiness
		}
		if _, err = cli.bizRepo.GetBusiness(ctx, data.businessID); err != nil {
			return user.User{}, errors.Wrap(err, "finding business")
		}
		now := time.Now().UTC()
		usr = user.User{
			ID:         uuid.New().String(),
			BusinessID: data.businessID,
			Roles:      []string{user.RoleEmployee},
			CreatedAt:  now,
		}
	}

	if name := core.CleanString(data.name); name != "" {
		usr.Name = name
	}
	if uname != "" {
		usr.Username = uname
	}
	if email != "" {
		usr.Email = email
	}
	if data.isAdmin {
		usr.Roles = []string{user.RoleAdminOwner}
	}
	usr.SetActive(true)
	if err = usr.SetPassword(data.password); err != nil {
		return user.User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()

	if exists {
		return cli.usrRepo.UpdateUser(ctx, usr)
	}
	return cli.usrRepo.CreateUser(ctx, usr)
}

func (cli *commandLine) findUser(ctx context.Context, uname, email string) (user.User, error) {
	for _, ident := range []string{uname, email} {
		if ident == "" {
			continue
		}
		usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: ident})
		if err == nil || errors.Cause(err) != user.ErrNotFound {
			return usr, err
		}
	}
	return user.User{}, user.ErrNotFound
}
