package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/queue"
)

func newWorkersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "workers",
		Short: "Show the worker fleet and heartbeat staleness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			heartbeats, err := store.ListWorkerHeartbeats(cmd.Context())
			if err != nil {
				return err
			}
			if len(heartbeats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workers have reported yet.")
				return printStuckJobs(cmd, cfg, store)
			}

			cutoff := 3 * time.Duration(cfg.Workflow.HeartbeatInterval) * time.Second
			now := time.Now()
			rows := make([][]string, 0, len(heartbeats))
			for _, hb := range heartbeats {
				liveness := "ok"
				if hb.Stale(cutoff, now) {
					liveness = "stale"
				}
				rows = append(rows, []string{
					hb.WorkerName,
					string(hb.Stage),
					hb.Hostname,
					fmt.Sprintf("%d", hb.PID),
					hb.LastSeen.Local().Format("2006-01-02 15:04:05"),
					liveness,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Worker", "Stage", "Host", "PID", "Last seen", "Liveness"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))

			return printStuckJobs(cmd, cfg, store)
		},
	}
}

// printStuckJobs flags jobs no worker will pick up on its own: pending with
// recorded missing dependencies, or claimed far longer than a stage should
// run. Claims have no lease, so a crashed worker's job stays claimed until
// `queue reset` releases it.
func printStuckJobs(cmd *cobra.Command, cfg *config.Config, store *queue.Store) error {
	jobs, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	staleClaim := 10 * time.Duration(cfg.Workflow.PollInterval) * time.Second
	now := time.Now()
	var stuck [][]string
	for _, job := range jobs {
		switch {
		case job.Status == queue.StatusPending && len(job.Meta.MissingDependencies) > 0:
			stuck = append(stuck, []string{shortID(job.ID), string(job.Status), "missing: " + formatList(job.Meta.MissingDependencies)})
		case job.IsProcessing() && job.StartedAt != nil && now.Sub(*job.StartedAt) > staleClaim:
			stuck = append(stuck, []string{shortID(job.ID), string(job.Status), fmt.Sprintf("claimed by %s for %s", job.ClaimedBy, now.Sub(*job.StartedAt).Round(time.Second))})
		}
	}
	if len(stuck) == 0 {
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nJobs needing attention:")
	fmt.Fprintln(out, renderTable([]string{"Job", "Status", "Reason"}, stuck, nil))
	fmt.Fprintln(out, "Use `clipforge queue reset` to release orphaned claims.")
	return nil
}
