package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/task"
	"github.com/spf13/cobra"
)

func newEnqueueCmd(opts *rootOptions) *cobra.Command {
	var date, source string
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Create one queued task per generation profile for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.close()
			if err := app.initQueue(cmd.Context(), false); err != nil {
				return err
			}

			if date == "" {
				date = app.today()
			}
			handles, err := app.queue.Enqueue(cmd.Context(), date, domain.TriggerSource(source))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, handles)
			}
			tw := newTable(out, "Task ID", "Profile", "Profile ID")
			for _, h := range handles {
				tw.AppendRow(rowOf(h.TaskID, h.ProfileName, h.ProfileID))
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "business date YYYY-MM-DD (default today in queue.timezone)")
	cmd.Flags().StringVar(&source, "source", string(domain.TriggerSourceManual), "trigger source: manual or cron")
	return cmd
}

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var (
		date    string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Drain the queued tasks of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, opts)
			if err != nil {
				return err
			}
			defer app.close()
			if err := app.initQueue(ctx, true); err != nil {
				return err
			}

			if date == "" {
				date = app.today()
			}
			if !cmd.Flags().Changed("workers") {
				workers = app.config.Queue.Workers
			}

			drainer := task.NewDrainer(app.queue, task.DrainerConfig{Workers: workers}, app.logger)
			summary, drainErr := drainer.Drain(ctx, date)
			if err := printSummary(cmd, opts, date, summary); err != nil {
				return err
			}
			return drainErr
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "business date YYYY-MM-DD (default today in queue.timezone)")
	cmd.Flags().IntVar(&workers, "workers", 1, "concurrent drain loops (default queue.workers)")
	return cmd
}

func printSummary(cmd *cobra.Command, opts *rootOptions, date string, summary task.Summary) error {
	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, map[string]any{"task_date": date, "summary": summary})
	}
	_, err := fmt.Fprintf(out, "%s: claimed=%d succeeded=%d failed=%d\n",
		date, summary.Claimed, summary.Succeeded, summary.Failed)
	return err
}
