package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/queue"
)

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	var stageFlag string
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "trigger <job-id>",
		Short: "Route an idle job to one stage",
		Long: "Routes a pending or ready job to a single stage. This is the only way a\n" +
			"job reaches the publish stage: the automatic chain always parks at ready.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, ok := queue.ParseStage(stageFlag)
			if !ok {
				return fmt.Errorf("unknown stage %q (want script, voiceover, video, or publish)", stageFlag)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			routed, err := store.RequestStage(cmd.Context(), args[0], stg, regenerate)
			if err != nil {
				return err
			}
			if !routed {
				job, lookupErr := store.GetByID(cmd.Context(), args[0])
				if lookupErr != nil {
					return lookupErr
				}
				if job == nil {
					return fmt.Errorf("job %s not found", args[0])
				}
				return fmt.Errorf("job %s is %s; only pending or ready jobs can be triggered", args[0], job.Status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s routed to the %s stage.\n", args[0], stg)
			return nil
		},
	}

	cmd.Flags().StringVar(&stageFlag, "stage", "", "Stage to run: script, voiceover, video, or publish")
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Allow the stage to overwrite fields it already produced")
	_ = cmd.MarkFlagRequired("stage")
	return cmd
}
