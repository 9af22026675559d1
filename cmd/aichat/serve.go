package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"aichat/internal/agent/provider"
	"aichat/internal/logger"
	"aichat/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend (POST /chat)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gen, err := provider.New(ctx, cfg.Server)
			if err != nil {
				return err
			}
			srv := server.New(gen, server.Options{
				Port:      cfg.Server.Port,
				Log:       logger.Named("server"),
				Exchanges: logger.NewExchangeLogger(logger.Root()),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "serving POST /chat on %s (model %s)\n", srv.Addr(), gen.Model())
			return srv.Run(ctx)
		},
	}
}
