package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aichat/internal/transport"
	"aichat/internal/tui/render"

	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration
	var raw bool

	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send one message and print the rendered reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			client, err := transport.New(transport.Options{Endpoint: cfg.Endpoint})
			if err != nil {
				return err
			}
			sess := newSession(client, opts.conversationLog())
			defer sess.Close()

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			ex, err := sess.conv.Submit(strings.Join(args, " "))
			if err != nil {
				return err
			}
			res := ex.Run(ctx)
			reply, err := sess.conv.Resolve(res)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, reply.Text)
			} else {
				renderer := render.NewRenderer(cfg.Render.Style)
				for _, line := range renderer.Text(reply.Text, terminalWidth(cfg.Render.Width)) {
					fmt.Fprintln(out, line)
				}
			}
			if res.Err != nil {
				return fmt.Errorf("request to %s failed: %w", client.Endpoint(), res.Err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the request after this duration (0 waits indefinitely)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the reply text without rendering")
	return cmd
}
