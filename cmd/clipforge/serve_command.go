package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipforge/internal/api"
	"clipforge/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API over the shared job store",
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

			logger, err := logging.NewFromConfig(cfg, "clipforge-api")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			server := api.NewServer(cfg, store, logger)
			if err := server.Start(signalCtx); err != nil {
				return err
			}
			defer server.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "API listening on %s\n", server.Addr())
			<-signalCtx.Done()
			return nil
		},
	}
}
