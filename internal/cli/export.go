package cli

import (
	"context"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/confkit/appconf/internal/appconf"
	"github.com/confkit/appconf/internal/seed"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all configuration as a seed document",
		Long: `Write the entire store to stdout as a YAML document in the seed
format, so the output of export can be fed back to import.

Example:
  appconf export --db ./appconf.db > seed.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
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

	doc := seed.Seed{Apps: make(map[string]map[string]string, len(apps))}
	for _, app := range apps {
		values, err := store.GetValues(ctx, appconf.ByApp(app))
		if err != nil {
			return outputError(f, ExitCommandError, ErrCodeDatabase, "failed to read values for "+app, err)
		}
		doc.Apps[app] = values
	}

	if opts.Format == "json" {
		return f.Success(doc.Apps)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return outputError(f, ExitCommandError, ErrCodeGeneric, "failed to render seed document", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
