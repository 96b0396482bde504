// Package cli implements the `todo` command: one-shot task commands and the
// terminal UI, all talking to the task API through client.Store.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rhinobase/workshop/internal/client"
	"github.com/rhinobase/workshop/internal/logging"
)

const defaultServer = "http://localhost:8080"

type rootOptions struct {
	server  string
	verbose bool

	logger *log.Logger
	api    *client.Client
	store  *client.Store
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage tasks on a todo server",
		Long: `todo talks to a todo API server.

Examples:
  todo list
  todo add "Buy milk"
  todo done 3f2b...
  todo tui`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			opts.logger = logging.NewWithWriter(cmd.ErrOrStderr(), logging.Options{Level: level, Prefix: "todo"})

			c, err := client.New(opts.server)
			if err != nil {
				return err
			}
			opts.api = c
			opts.store = client.NewStore(c, opts.logger)
			opts.logger.Debug("using server", "url", opts.server)
			return nil
		},
	}

	server := os.Getenv("TODO_SERVER")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVarP(&opts.server, "server", "s", server, "todo API base URL (env TODO_SERVER)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newStatusCmd(opts, "done", "Mark a task completed", true),
		newStatusCmd(opts, "undo", "Mark a task pending", false),
		newRemoveCmd(opts),
		newTUICmd(opts),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
