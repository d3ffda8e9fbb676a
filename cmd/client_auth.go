package cmd

import (
	"context"
	"fmt"
	"os"

	internalApp "github.com/haierkeys/fast-note-client/internal/app"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// PasswordEnv 未通过 --password 指定密码时读取的环境变量
const PasswordEnv = "FAST_NOTE_PASSWORD"

type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&f.password, "password", "P", "", "account password (or $"+PasswordEnv+")")
	_ = cmd.MarkFlagRequired("email")
}

func (f *credentialFlags) secret() (string, error) {
	if f.password != "" {
		return f.password, nil
	}
	if p := os.Getenv(PasswordEnv); p != "" {
		return p, nil
	}
	return "", errors.New("password is required: pass --password or set $" + PasswordEnv)
}

func init() {
	loginFlags := new(credentialFlags)
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := loginFlags.secret()
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := resultErr(c.Session.Login(ctx, loginFlags.email, password)); err != nil {
					return err
				}
				fmt.Printf("Logged in as %s\n", c.Session.User().Email)
				return nil
			})
		},
	}
	loginFlags.bind(loginCmd)

	registerFlags := new(credentialFlags)
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not sign in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := registerFlags.secret()
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				res := c.Session.Register(ctx, registerFlags.email, password)
				if err := resultErr(res.Result); err != nil {
					return err
				}
				fmt.Printf("Registered %s (%s)\n", res.User.Email, res.User.ID)
				return nil
			})
		},
	}
	registerFlags.bind(registerCmd)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := resultErr(c.Logout(ctx)); err != nil {
					return err
				}
				fmt.Println("Logged out")
				return nil
			})
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := requireLogin(c); err != nil {
					return err
				}
				u := c.Session.User()
				role := "user"
				if c.Admin.CheckAdminStatus(ctx) {
					role = "admin"
				}
				t := newTable("ID", "Email", "Role")
				t.AppendRow([]any{u.ID, u.Email, role})
				t.Render()
				return nil
			})
		},
	}

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
