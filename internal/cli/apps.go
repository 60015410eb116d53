package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// AppsOptions holds flags for the apps command.
type AppsOptions struct {
	*RootOptions
	Database string
}

// NewAppsCommand creates the apps command.
func NewAppsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AppsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List applications holding configuration",
		Long: `List every application namespace that has at least one
configuration entry, sorted ascending.

Examples:
  appconf apps --db ./appconf.db
  appconf apps --db ./appconf.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApps(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runApps(opts *AppsOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := NewFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	store, db, err := openStore(opts.Database)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer db.Close()

	apps, err := store.ListApps(ctx)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to list applications", err)
	}

	if opts.Format == "json" {
		return f.Success(apps)
	}

	if len(apps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No applications found.")
		return nil
	}
	for _, app := range apps {
		fmt.Fprintln(cmd.OutOrStdout(), app)
	}
	return nil
}
