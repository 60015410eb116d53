package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// DropOptions holds flags for the drop command.
type DropOptions struct {
	*RootOptions
	Database string
}

// NewDropCommand creates the drop command.
func NewDropCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DropOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "drop <app>",
		Short: "Remove every configuration entry of an application",
		Long: `Remove all entries of one application's namespace. Dropping an
application with no entries succeeds without effect.

Example:
  appconf drop mail --db ./appconf.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrop(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDrop(opts *DropOptions, app string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := NewFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	store, db, err := openStore(opts.Database)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer db.Close()

	if err := store.DeleteApp(ctx, app); err != nil {
		return outputError(f, ExitCommandError, ErrCodeWrite, "failed to drop application", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]string{"app": app})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Dropped %s\n", app)
	return nil
}
