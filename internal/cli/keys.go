package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// KeysOptions holds flags for the keys command.
type KeysOptions struct {
	*RootOptions
	Database string
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeysOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keys <app>",
		Short: "List the configuration keys of an application",
		Long: `List the keys of one application's namespace, sorted ascending.

Examples:
  appconf keys mail --db ./appconf.db
  appconf keys mail --db ./appconf.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runKeys(opts *KeysOptions, app string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := NewFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	store, db, err := openStore(opts.Database)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer db.Close()

	keys, err := store.ListKeys(ctx, app)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to list keys", err)
	}

	if opts.Format == "json" {
		return f.Success(keys)
	}

	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No keys found.")
		return nil
	}
	for _, key := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), key)
	}
	return nil
}
