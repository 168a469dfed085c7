package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/phrazzld/wordnews/internal/store"
	"github.com/spf13/cobra"
)

func newProfilesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "profiles", Short: "Manage generation profiles"}
	cmd.AddCommand(newProfilesListCmd(opts), newProfilesImportCmd(opts))
	return cmd
}

func newProfilesListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List generation profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.close()

			profiles, err := app.stores.Profiles.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, profiles)
			}
			tw := newTable(out, "ID", "Name", "Topic", "Concurrency", "Timeout (ms)")
			for _, p := range profiles {
				tw.AppendRow(rowOf(p.ID, p.Name, truncate(p.TopicPreference, 40), p.Concurrency, p.TimeoutMs))
			}
			tw.Render()
			return nil
		},
	}
}

func newProfilesImportCmd(opts *rootOptions) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create or update profiles from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return err
			}
			seeds, err := parseProfilesFile(data)
			if err != nil {
				return err
			}

			app, err := newApplication(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.close()

			var result importResult
			err = store.RunInTransaction(cmd.Context(), app.db, func(ctx context.Context, tx *sql.Tx) error {
				result, err = importProfiles(ctx, app.stores.Profiles.WithTx(tx), seeds)
				return err
			})
			if err != nil {
				return err
			}
			return printImportResult(cmd, opts, "profiles", result)
		},
	}
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to a profiles YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newWordsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "words", Short: "Manage daily word pools"}
	cmd.AddCommand(newWordsImportCmd(opts))
	return cmd
}

func newWordsImportCmd(opts *rootOptions) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace daily word pools from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return err
			}
			pools, err := parseWordsFile(data)
			if err != nil {
				return err
			}

			app, err := newApplication(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.close()

			err = store.RunInTransaction(cmd.Context(), app.db, func(ctx context.Context, tx *sql.Tx) error {
				words := app.stores.Words.WithTx(tx)
				for _, pool := range pools {
					if err := words.Upsert(ctx, pool); err != nil {
						return fmt.Errorf("failed to upsert pool %s: %w", pool.Date, err)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			return printImportResult(cmd, opts, "word pools", importResult{Updated: len(pools)})
		},
	}
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to a words YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printImportResult(cmd *cobra.Command, opts *rootOptions, what string, result importResult) error {
	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, result)
	}
	_, err := fmt.Fprintf(out, "%s: %d created, %d updated\n", what, result.Created, result.Updated)
	return err
}
