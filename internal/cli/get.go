package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Database string
	Default  string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <app> <key>",
		Short: "Read one configuration value",
		Long: `Read the value stored under an application's key. A missing key is
not an error: the value of --default is printed unchanged.

Examples:
  appconf get mail smtp_host --db ./appconf.db
  appconf get mail smtp_port --default 25 --db ./appconf.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Default, "default", "", "value to print when the key is absent")

	return cmd
}

func runGet(opts *GetOptions, app, key string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := NewFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	store, db, err := openStore(opts.Database)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer db.Close()

	value, err := store.GetValue(ctx, app, key, opts.Default)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to read value", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]string{
			"app":   app,
			"key":   key,
			"value": value,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}
