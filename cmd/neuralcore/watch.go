package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/neuralcore/monitor"
	"github.com/tailored-agentic-units/neuralcore/observability"
	"github.com/tailored-agentic-units/neuralcore/tui"
)

func newWatchCmd(a *app) *cobra.Command {
	var serveRPC bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow decision sessions in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			obs := a.obs
			// Log lines would tear the full-screen view.
			if !cmd.Flags().Changed("observer") {
				obs = observability.NoOpObserver{}
			}

			opts := []monitor.Option{monitor.WithObserver(obs)}
			if !serveRPC {
				opts = append(opts, monitor.WithoutRPC())
			}
			m, err := monitor.New(a.cfg, opts...)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return m.Run(gctx) })
			g.Go(func() error {
				defer cancel()
				model := tui.New(gctx, m.Store(), m.Filter(), m.Feed(), m)
				return tui.Run(gctx, model)
			})
			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&serveRPC, "rpc", false, "Also serve the RPC API while watching")

	return cmd
}
