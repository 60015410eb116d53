package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	Database string
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <app> <key> <value>",
		Short: "Write one configuration value",
		Long: `Store a value under an application's key, creating the entry or
overwriting the existing one. The write is persisted before the command
reports success.

Examples:
  appconf set mail smtp_host a.example.com --db ./appconf.db
  appconf set mail smtp_port 25 --db ./appconf.db`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSet(opts *SetOptions, app, key, value string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := NewFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	store, db, err := openStore(opts.Database)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer db.Close()

	if err := store.SetValue(ctx, app, key, value); err != nil {
		return outputError(f, ExitCommandError, ErrCodeWrite, "failed to set value", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]string{
			"app":   app,
			"key":   key,
			"value": value,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s/%s = %s\n", app, key, value)
	return nil
}
