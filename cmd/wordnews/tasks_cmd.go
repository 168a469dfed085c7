package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/spf13/cobra"
)

func newTasksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "tasks", Short: "Inspect and delete generation tasks"}
	cmd.AddCommand(newTasksListCmd(opts), newTasksDeleteCmd(opts))
	return cmd
}

func newTasksListCmd(opts *rootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.close()

			if date == "" {
				date = app.today()
			}
			if err := domain.ValidateTaskDate(date); err != nil {
				return err
			}
			tasks, err := app.stores.Tasks.ListByDate(cmd.Context(), date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, tasks)
			}
			tw := newTable(out, "ID", "Profile", "Status", "Version", "Source", "Started", "Finished", "Error")
			for _, t := range tasks {
				tw.AppendRow(rowOf(t.ID, t.ProfileName, t.Status, t.Version, t.TriggerSource,
					formatTime(t.StartedAt), formatTime(t.FinishedAt), truncate(t.ErrorMessage, 60)))
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "business date YYYY-MM-DD (default today in queue.timezone)")
	return cmd
}

func newTasksDeleteCmd(opts *rootOptions) *cobra.Command {
	var noDrain bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and its articles, then drain its date again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", domain.ErrInvalidID, args[0])
			}

			app, err := newApplication(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.close()
			if err := app.initQueue(cmd.Context(), !noDrain); err != nil {
				return err
			}

			deleted, err := app.queue.DeleteTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted task %s (%s)\n", deleted.ID, deleted.TaskDate); err != nil {
				return err
			}
			if noDrain {
				return nil
			}

			summary, err := app.queue.ProcessQueue(cmd.Context(), deleted.TaskDate)
			if printErr := printSummary(cmd, opts, deleted.TaskDate, summary); printErr != nil {
				return printErr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noDrain, "no-drain", false, "skip draining the task's date after deletion")
	return cmd
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
