package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/adminapi/api"
	"github.com/adamwoolhether/adminapi/client"
	"github.com/adamwoolhether/adminapi/client/download"
)

func newEnhanceCommand(opts *GlobalOptions) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "enhance [requirement]",
		Short: "Stream an enhanced version of a requirement",
		Long: `Sends a requirement to the enhancement endpoint and prints the rewritten
text as it arrives. The requirement is read from stdin when no argument is
given. Ctrl-C stops the stream and keeps what was printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := opts.env

			text := strings.Join(args, " ")
			if text == "" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading requirement: %w", err)
				}
				text = string(b)
			}

			req := api.EnhanceRequest{OriginalRequirement: strings.TrimSpace(text)}
			if count > 0 {
				req.ExpectedProcessCount = &count
			}

			var streamed bool
			result, err := e.svc.Requirements.Enhance(cmd.Context(), req, func(delta, _ string) {
				streamed = true
				io.WriteString(e.out, delta)
			})
			if !streamed && err == nil {
				io.WriteString(e.out, result)
			}
			fmt.Fprintln(e.out)

			if errors.Is(err, client.ErrStreamCancelled) {
				e.logger.Info("enhance stopped", "received", len(result))
			}
			return err
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "expected number of functional processes")

	return cmd
}

func newExportCommand(opts *GlobalOptions) *cobra.Command {
	var (
		dir      string
		name     string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "export <processes.json>",
		Short: "Export a process table as a workbook",
		Long: `Reads functional processes from a JSON file, either a list or an object
with a "processes" list, and saves the exported workbook into --dir.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := opts.env

			req, err := readProcesses(args[0])
			if err != nil {
				return err
			}

			var dopts []download.Option
			if name != "" {
				dopts = append(dopts, download.WithFilename(name))
			}
			if progress {
				dopts = append(dopts, download.WithProgress(func(written, total int64) {
					if total > 0 {
						fmt.Fprintf(e.errOut, "\r%d/%d bytes", written, total)
						return
					}
					fmt.Fprintf(e.errOut, "\r%d bytes", written)
				}, 200*time.Millisecond))
			}

			dest, err := e.svc.Requirements.ExportTable(cmd.Context(), req, dir, dopts...)
			if progress {
				fmt.Fprintln(e.errOut)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(e.out, dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory to save into")
	cmd.Flags().StringVar(&name, "name", "", "file name, overriding the server's")
	cmd.Flags().BoolVar(&progress, "progress", false, "report download progress on stderr")

	return cmd
}

func readProcesses(path string) (api.ExportTableRequest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return api.ExportTableRequest{}, fmt.Errorf("reading processes: %w", err)
	}

	var req api.ExportTableRequest
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &req.Processes)
	} else {
		err = json.Unmarshal(trimmed, &req)
	}
	if err != nil {
		return api.ExportTableRequest{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	return req, nil
}

func newImportCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Import functional processes from a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := opts.env

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := e.svc.Requirements.ImportProcesses(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}

			for i, p := range res.FunctionalProcesses {
				fmt.Fprintf(e.out, "%d. %s\n", i+1, p.Description)
			}
			return nil
		},
	}
}

func newAnalyzeCommand(opts *GlobalOptions) *cobra.Command {
	var (
		interval time.Duration
		noWait   bool
		list     bool
		taskID   int64
	)

	cmd := &cobra.Command{
		Use:   "analyze [process description]...",
		Short: "Break functional processes into sub-processes",
		Long: `Submits one analysis task with a functional process per argument and waits
for the backend to finish it, printing the resulting sub-processes. --task
waits on an existing task instead; --list shows your tasks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := opts.env
			reqs := e.svc.Requirements

			if list {
				tasks, err := reqs.AnalysisTasks(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSTATUS\tPROCESSES\tCREATED")
				for _, t := range tasks {
					fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", t.TaskID, t.Status, t.ProcessCount, t.CreatedTime)
				}
				return w.Flush()
			}

			id := taskID
			if id == 0 {
				if len(args) == 0 {
					return errors.New("at least one functional process is required")
				}

				req := api.AnalysisRequest{}
				for _, a := range args {
					req.FunctionalProcesses = append(req.FunctionalProcesses, api.FunctionalProcess{Description: a})
				}

				task, err := reqs.SubmitAnalysis(cmd.Context(), req)
				if err != nil {
					return err
				}
				id = task.TaskID
				e.logger.Info("analysis submitted", "task", id)

				if noWait {
					fmt.Fprintln(e.out, id)
					return nil
				}
			}

			task, err := reqs.WaitAnalysis(cmd.Context(), id, interval)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROCESS\tTRIGGER\tMOVEMENT\tDATA GROUP")
			for _, p := range task.Processes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.FunctionalProcess, p.TriggerEvent, p.DataMovementType, p.DataGroup)
			}
			return w.Flush()
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", api.DefaultPollInterval, "how often to poll the task")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "print the task id and return")
	cmd.Flags().BoolVar(&list, "list", false, "list analysis tasks")
	cmd.Flags().Int64Var(&taskID, "task", 0, "wait on an existing task")

	return cmd
}
