package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/queue"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var chain bool
	var privacy string

	cmd := &cobra.Command{
		Use:   "submit <topic>",
		Short: "Create a new video job for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return fmt.Errorf("topic is required")
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			meta := queue.Metadata{
				ActionNeeded: queue.StageScript.Action(),
				Privacy:      strings.TrimSpace(privacy),
			}
			if chain {
				meta.ActionNeeded = queue.ActionRunAll
				meta.OriginalAction = queue.ActionRunAll
			}

			job, err := store.NewJob(cmd.Context(), topic, meta)
			if err != nil {
				return err
			}

			mode := "script only"
			if chain {
				mode = "full chain (stops at ready; publish needs an explicit trigger)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted job %s\n  topic: %s\n  mode:  %s\n", job.ID, job.Topic, mode)
			return nil
		},
	}

	cmd.Flags().BoolVar(&chain, "chain", false, "Run script, voiceover, and video stages in sequence")
	cmd.Flags().StringVar(&privacy, "privacy", "", "YouTube privacy status for the eventual upload (private, unlisted, public)")
	return cmd
}
