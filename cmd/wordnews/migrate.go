package main

import (
	"github.com/phrazzld/wordnews/internal/platform/sqlstore"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{sqlstore.MigrateUp, sqlstore.MigrateDown, sqlstore.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := sqlstore.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}

			app, err := newApplication(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.close()

			states, err := sqlstore.RunMigrations(cmd.Context(), app.db, app.stores.Dialect, command, app.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, states)
			}
			tw := newTable(out, "Version", "Applied", "Path")
			for _, s := range states {
				tw.AppendRow(rowOf(s.Version, s.Applied, s.Path))
			}
			tw.Render()
			return nil
		},
	}
}
