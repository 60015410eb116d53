package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/confkit/appconf/internal/appconf"
)

// ValuesOptions holds flags for the values command.
type ValuesOptions struct {
	*RootOptions
	Database string
	App      string
	Key      string
}

// NewValuesCommand creates the values command.
func NewValuesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValuesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "values",
		Short: "Bulk-read values along one dimension",
		Long: `Read values in bulk, straight from the backing table. Exactly one
dimension must be fixed:

  --app <app>  every key of one application, mapped key to value
  --key <key>  one key across all applications, mapped app to value

Examples:
  appconf values --app mail --db ./appconf.db
  appconf values --key timeout --db ./appconf.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValues(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.App, "app", "", "fix the application dimension")
	cmd.Flags().StringVar(&opts.Key, "key", "", "fix the key dimension")

	// Mirrors the store's tagged filter: one dimension, never both.
	cmd.MarkFlagsOneRequired("app", "key")
	cmd.MarkFlagsMutuallyExclusive("app", "key")

	return cmd
}

func runValues(opts *ValuesOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := NewFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	store, db, err := openStore(opts.Database)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer db.Close()

	filter := appconf.ByApp(opts.App)
	if cmd.Flags().Changed("key") {
		filter = appconf.ByKey(opts.Key)
	}

	values, err := store.GetValues(ctx, filter)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to read values", err)
	}

	if opts.Format == "json" {
		return f.Success(values)
	}

	if len(values) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No values found.")
		return nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, values[name])
	}
	return nil
}
