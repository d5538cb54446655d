package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/rota/core/business"
	"github.com/trezcool/rota/core/user"
	"github.com/trezcool/rota/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = database.Migrate  // mockable

	errHelp        = errors.New("help provided")
	errNoPassword  = errors.New("password cannot be empty")
	errNoBusiness  = errors.New("--business is required to create a user")
	errNoUserIdent = errors.New("one of --username or --email is required")
)

type commandLine struct {
	db      *sql.DB
	usrRepo user.Repository
	bizRepo business.Repository
	out     io.Writer
}

// run executes args (program name excluded) against a fresh command tree.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	return root.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Rota administration tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	cmd.AddCommand(cli.migrateCmd(), cli.addUserCmd(), cli.resetPasswordCmd())
	return cmd
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command (up, up-to, down, down-to, redo, reset, status, version, create, fix)",
		// goose parses its own arguments
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
				_ = cmd.Help()
				return errHelp
			}
			return gooseRunFunc(cli.db, args[0], args[1:]...)
		},
	}
}

func (cli *commandLine) addUserCmd() *cobra.Command {
	var data newUserData
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the user holding the given username or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if data.username == "" && data.email == "" {
				return errNoUserIdent
			}
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			data.password = pwd
			usr, err := cli.addUser(cmd.Context(), data)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "user %s saved\n", usr.ID)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&data.businessID, "business", "", "ID of the user's business (required for new users)")
	flags.StringVar(&data.name, "name", "", "display name")
	flags.StringVar(&data.username, "username", "", "username")
	flags.StringVar(&data.email, "email", "", "email")
	flags.BoolVar(&data.isAdmin, "admin", false, "make the user an owner of the business")
	return cmd
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password; the new password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" {
				_ = cmd.Help()
				return errHelp
			}
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			return cli.resetPassword(cmd.Context(), uname, pwd)
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "the user's username or email")
	return cmd
}

func (cli *commandLine) promptPassword() (string, error) {
	_, _ = fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errNoPassword
	}
	return string(pwd), nil
}
