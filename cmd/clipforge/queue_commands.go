package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and repair the job queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newQueueStatusCommand(ctx))
	cmd.AddCommand(newQueueListCommand(ctx))
	cmd.AddCommand(newQueueRetryCommand(ctx))
	cmd.AddCommand(newQueueResetCommand(ctx))
	cmd.AddCommand(newQueueRemoveCommand(ctx))
	cmd.AddCommand(newQueueClearCommand(ctx))
	cmd.AddCommand(newQueueClearFailedCommand(ctx))
	cmd.AddCommand(newQueueClearCompletedCommand(ctx))
	return cmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show job counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			colorize := shouldColorize(cmd.OutOrStdout())
			rows := make([][]string, 0, len(stats))
			total := 0
			for _, status := range queue.AllStatuses() {
				count, ok := stats[status]
				if !ok {
					continue
				}
				total += count
				rows = append(rows, []string{colorizeStatus(string(status), colorize), fmt.Sprintf("%d", count)})
			}
			rows = append(rows, []string{"total", fmt.Sprintf("%d", total)})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Status", "Jobs"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			for _, value := range statusFlags {
				parsed, ok := queue.ParseStatus(value)
				if !ok {
					return fmt.Errorf("unknown status %q", value)
				}
				statuses = append(statuses, parsed)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			jobs, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs found.")
				return nil
			}

			colorize := shouldColorize(cmd.OutOrStdout())
			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					shortID(job.ID),
					truncate(job.Topic, 40),
					colorizeStatus(string(job.Status), colorize),
					string(job.Meta.ActionNeeded),
					job.Meta.SubStatus,
					job.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Topic", "Status", "Action", "Sub-status", "Created"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&statusFlags, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [job-id...]",
		Short: "Return failed jobs to pending (all failed jobs when no ids given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.RetryFailed(cmd.Context(), args...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d failed job(s).\n", count)
			return nil
		},
	}
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Return stuck processing jobs to pending",
		Long: "Returns every job parked in a processing status to pending. Use after a\n" +
			"worker crash: claims have no lease, so an orphaned claim holds its job\n" +
			"until this command releases it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.ResetStuckProcessing(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d stuck job(s) to pending.\n", count)
			return nil
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <job-id>",
		Short: "Delete a single job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("job %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s.\n", args[0])
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d job(s).\n", count)
			return nil
		},
	}
}

func newQueueClearFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failed",
		Short: "Delete failed jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.ClearFailed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d failed job(s).\n", count)
			return nil
		},
	}
}

func newQueueClearCompletedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete completed jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.ClearCompleted(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d completed job(s).\n", count)
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04:05")
}

func formatList(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
