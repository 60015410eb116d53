package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confkit/appconf/internal/seed"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Bulk-load configuration from a seed file",
		Long: `Validate a YAML seed file against the seed schema and write every
entry through the store. Validation happens before the first write, so a
bad file changes nothing. Entries are applied in sorted (app, key) order;
existing entries are overwritten.

Example:
  appconf import ./seed.yaml --db ./appconf.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := NewFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := seed.Load(path)
	if err != nil {
		return outputError(f, ExitFailure, ErrCodeSeed, "failed to load seed file", err)
	}

	store, db, err := openStore(opts.Database)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer db.Close()

	entries := s.Entries()
	for _, e := range entries {
		if err := store.SetValue(ctx, e.App, e.Key, e.Value); err != nil {
			return outputError(f, ExitCommandError, ErrCodeWrite,
				fmt.Sprintf("failed to import %s/%s", e.App, e.Key), err)
		}
		f.VerboseLog("imported %s/%s", e.App, e.Key)
	}

	if opts.Format == "json" {
		return f.Success(map[string]int{
			"entries": len(entries),
			"apps":    len(s.Apps),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries across %d apps\n", len(entries), len(s.Apps))
	return nil
}
