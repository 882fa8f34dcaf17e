package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var showScript bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show full details for one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := store.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if job == nil {
				return fmt.Errorf("job %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Job %s\n", job.ID)
			fmt.Fprintf(out, "  Topic:        %s\n", job.Topic)
			fmt.Fprintf(out, "  Status:       %s\n", colorizeStatus(string(job.Status), colorize))
			if job.Meta.SubStatus != "" {
				fmt.Fprintf(out, "  Sub-status:   %s\n", job.Meta.SubStatus)
			}
			if job.Meta.ActionNeeded != "" {
				fmt.Fprintf(out, "  Action:       %s\n", job.Meta.ActionNeeded)
			}
			if job.Meta.OriginalAction != "" {
				fmt.Fprintf(out, "  Chain:        %s\n", job.Meta.OriginalAction)
			}
			if len(job.Meta.MissingDependencies) > 0 {
				fmt.Fprintf(out, "  Missing:      %s\n", formatList(job.Meta.MissingDependencies))
			}
			if job.ClaimedBy != "" {
				fmt.Fprintf(out, "  Claimed by:   %s\n", job.ClaimedBy)
			}
			fmt.Fprintf(out, "  Title:        %s\n", orDash(job.Title))
			fmt.Fprintf(out, "  Tags:         %s\n", formatList(job.Tags))
			fmt.Fprintf(out, "  Voiceover:    %s\n", orDash(job.VoiceoverRef))
			fmt.Fprintf(out, "  Video:        %s\n", orDash(job.VideoRef))
			if job.YouTubeURL != "" {
				fmt.Fprintf(out, "  Published:    %s\n", job.YouTubeURL)
			}
			if job.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:        %s\n", job.ErrorMessage)
			}
			fmt.Fprintf(out, "  Created:      %s\n", job.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  Started:      %s\n", formatTimePtr(job.StartedAt))
			fmt.Fprintf(out, "  Completed:    %s\n", formatTimePtr(job.CompletedAt))

			if showScript && job.Script != "" {
				fmt.Fprintf(out, "\nScript:\n%s\n", strings.TrimSpace(job.Script))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showScript, "script", false, "Print the generated script")
	return cmd
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
