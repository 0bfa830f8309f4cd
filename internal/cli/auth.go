package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/adminapi/api"
	"github.com/adamwoolhether/adminapi/session"
)

func newLoginCommand(opts *GlobalOptions) *cobra.Command {
	var req api.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Example: `  adminctl login -u ada -p secret
  echo secret | adminctl login -u ada`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				req.Password = strings.TrimRight(line, "\r\n")
			}

			e := opts.env
			creds, err := e.svc.Auth.Login(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(e.out, "logged in as %s (%s)\n", creds.Username, creds.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password, read from stdin when empty")
	cmd.MarkFlagRequired("username")

	return cmd
}

func newLogoutCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.env.svc.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(opts.env.out, "logged out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check the stored session with the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := opts.env
			p, err := e.validator.Ensure(cmd.Context())
			if errors.Is(err, session.ErrNoCredential) {
				return errNotLoggedIn
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(e.out, "%s (%s)\n", p.Username, p.Role)
			return nil
		},
	}
}
