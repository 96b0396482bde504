package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rhinobase/workshop/internal/client"
	dom "github.com/rhinobase/workshop/internal/domain"
	"github.com/rhinobase/workshop/internal/logging"
	"github.com/rhinobase/workshop/internal/ui"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List tasks",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.store.FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			return printTasks(cmd.OutOrStdout(), list)
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>...",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("task text is empty")
			}
			t, err := opts.store.Create(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", t.ID)
			return nil
		},
	}
}

func newStatusCmd(opts *rootOptions, use, short string, status bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.store.SetStatus(cmd.Context(), args[0], status); err != nil {
				return describe(err, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", args[0])
			return nil
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Short:   "Delete a task",
		Aliases: []string{"delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.store.Delete(cmd.Context(), args[0]); err != nil {
				return describe(err, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stderr is under the alt screen while the UI runs.
			logger, closeLog, err := tuiLogger(logFile, opts.verbose)
			if err != nil {
				return err
			}
			defer closeLog()
			return ui.Run(cmd.Context(), client.NewStore(opts.api, logger))
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write UI logs to this file (default: discard)")
	return cmd
}

// tuiLogger returns a logger for the UI. Without a path logs are discarded.
func tuiLogger(path string, verbose bool) (*log.Logger, func() error, error) {
	if path == "" {
		return logging.Discard(), func() error { return nil }, nil
	}
	f, err := tea.LogToFile(path, "todo")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logging.NewWithWriter(f, logging.Options{Level: level, Prefix: "todo"}), f.Close, nil
}

func describe(err error, id string) error {
	if client.IsNotFound(err) {
		return fmt.Errorf("task %s not found", id)
	}
	return err
}

func printTasks(w io.Writer, list []dom.Task) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTASK")
	for _, t := range list {
		status := "pending"
		if t.Status {
			status = "completed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, status, t.Task)
	}
	return tw.Flush()
}
