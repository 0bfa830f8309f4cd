package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const cliName = "adminctl"

// GlobalOptions holds the flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	EnvFile    string
	BaseURL    string
	LogLevel   string
	LogFile    string

	env *env
}

// NewCommand returns the adminctl root command with all subcommands.
func NewCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   cliName,
		Short: "Manage the admin API from the command line",
		Long: `adminctl signs in to the admin API, manages users and runs the
requirement tools: streamed enhancement, table export, process import
and sub-process analysis tasks.

Settings come from a YAML config file, a .env file and ADMINAPI_*
environment variables, in that order; flags win over all of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			opts.env = e
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: user config dir)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with ADMINAPI_* overrides")
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "", "admin API base URL")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "write logs to a rotated file instead of stderr")

	cmd.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newGetCommand(opts),
		newUsersCommand(opts),
		newEnhanceCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newAnalyzeCommand(opts),
	)

	return cmd
}

func (o *GlobalOptions) close() error {
	if o.env == nil {
		return nil
	}
	err := o.env.close()
	o.env = nil
	if err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}

var errNotLoggedIn = errors.New(`not logged in, run "adminctl login"`)
