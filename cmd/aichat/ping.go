package main

import (
	"context"
	"fmt"
	"time"

	"aichat/internal/transport"

	"github.com/spf13/cobra"
)

func newPingCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured chat endpoint accepts connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if timeout <= 0 {
				timeout = 5 * time.Second
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := transport.CheckReachable(ctx, cfg.Endpoint); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s is reachable\n", cfg.Endpoint)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Dial timeout")
	return cmd
}
