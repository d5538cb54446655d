package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rota/core/business"
	"github.com/trezcool/rota/core/user"
	"github.com/trezcool/rota/storage/database/inmem"
	"github.com/trezcool/rota/tests"
)

var (
	usrRepo user.Repository
	bizRepo business.Repository
)

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	bizRepo = inmemdb.NewBusinessRepository(db)

	// start CLI
	return &commandLine{
		usrRepo: usrRepo,
		bizRepo: bizRepo,
		out:     new(bytes.Buffer),
	}
}

// mockPassword makes the password prompt return pwd.
func mockPassword(t *testing.T, pwd string) {
	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_root(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "admin"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(tt.args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var ran []string
	orig := gooseRunFunc
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = orig })

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "help", args: []string{"migrate", "--help"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "shift_notes", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(tt.args))
		})
	}
	assert.Equal(t, []string{"up", "up-by-one", "up-to", "down", "down-to", "redo", "reset", "status", "version", "create", "fix"}, ran)
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()
	biz := testutil.CreateBusiness(t, bizRepo, "Acme")

	tests := []cliTest{
		{name: "no ident", args: []string{"adduser", "--business", biz.ID}, pwd: "lol", wantErr: errNoUserIdent},
		{name: "no password", args: []string{"adduser", "--business", biz.ID, "--username", "kim"}, wantErr: errNoPassword},
		{name: "new user without business", args: []string{"adduser", "--username", "kim"}, pwd: "lol", wantErr: errNoBusiness},
		{name: "unknown business", args: []string{"adduser", "--business", "nope", "--username", "kim"}, pwd: "lol", wantErrStr: "finding business: business not found"},
		{name: "new employee", args: []string{"adduser", "--business", biz.ID, "--name", "Kim", "--username", "KIM", "--email", "kim@rota.test"}, pwd: "lol"},
		{name: "promote by email", args: []string{"adduser", "--email", "kim@rota.test", "--admin"}, pwd: "lmao"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			tt.check(t, cli.run(tt.args))
		})
	}

	usr, err := usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: "kim"})
	require.NoError(t, err)
	assert.Equal(t, biz.ID, usr.BusinessID)
	assert.Equal(t, "Kim", usr.Name)
	assert.Equal(t, "kim@rota.test", usr.Email)
	assert.Equal(t, []string{user.RoleAdminOwner}, usr.Roles)
	assert.True(t, usr.Active())
	assert.NoError(t, usr.CheckPassword("lmao"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	biz := testutil.CreateBusiness(t, bizRepo, "Acme")
	usr := testutil.CreateUser(t, usrRepo, biz.ID, "User", "awe", "awe@test.cd", "mdr", nil, true)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "--username", "lol"}, wantErr: errNoPassword},
		{name: "user not found", args: []string{"resetpassword", "--username", "lol"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "--username", usr.Username}, pwd: "lol"},
		{name: "reset with email", args: []string{"resetpassword", "--username", "AWE@test.cd"}, pwd: "lmao"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			err := cli.run(tt.args)
			tt.check(t, err)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				require.NoError(t, err)
				assert.NoError(t, refreshedUsr.CheckPassword(tt.pwd))
			}
		})
	}
}
