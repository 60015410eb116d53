package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// UnsetOptions holds flags for the unset command.
type UnsetOptions struct {
	*RootOptions
	Database string
}

// NewUnsetCommand creates the unset command.
func NewUnsetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UnsetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "unset <app> <key>",
		Short: "Remove one configuration entry",
		Long: `Remove the entry stored under an application's key. Removing a key
that does not exist succeeds without effect.

Example:
  appconf unset mail smtp_host --db ./appconf.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnset(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runUnset(opts *UnsetOptions, app, key string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := NewFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	store, db, err := openStore(opts.Database)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer db.Close()

	if err := store.DeleteKey(ctx, app, key); err != nil {
		return outputError(f, ExitCommandError, ErrCodeWrite, "failed to delete key", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]string{"app": app, "key": key})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s/%s\n", app, key)
	return nil
}
