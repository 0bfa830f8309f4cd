package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/adminapi/client"
)

func newGetCommand(opts *GlobalOptions) *cobra.Command {
	var query map[string]string

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "GET a path and print the JSON response",
		Example: `  adminctl get /api/admin/users
  adminctl get /api/prompt-templates/search -q keyword=enhance`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := opts.env

			var raw json.RawMessage
			err := e.client.Get(cmd.Context(), args[0],
				client.WithQueryStrings(query),
				client.WithDestination(&raw),
			)
			if err != nil {
				return err
			}

			return printJSON(e, raw)
		},
	}

	cmd.Flags().StringToStringVarP(&query, "query", "q", nil, "query parameters as key=value")

	return cmd
}

func printJSON(e *env, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("formatting response: %w", err)
	}
	buf.WriteByte('\n')

	_, err := e.out.Write(buf.Bytes())
	return err
}
