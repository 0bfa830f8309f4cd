package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/adminapi/api"
)

func newUsersCommand(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage system accounts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List accounts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				e := opts.env
				users, err := e.svc.Users.List(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUSERNAME\tROLE")
				for _, u := range users {
					fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
				}
				return w.Flush()
			},
		},
		newUserCreateCommand(opts),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid user id %q", args[0])
				}
				if err := opts.env.svc.Users.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(opts.env.out, "deleted user %d\n", id)
				return nil
			},
		},
	)

	return cmd
}

func newUserCreateCommand(opts *GlobalOptions) *cobra.Command {
	var req api.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := opts.env.svc.Users.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(opts.env.out, "created user %d (%s)\n", u.ID, u.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "initial password")
	cmd.Flags().StringVar(&req.Role, "role", "USER", "ADMIN or USER")

	return cmd
}
