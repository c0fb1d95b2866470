package main

import (
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/neuralcore/monitor"
)

func newRunCmd(a *app) *cobra.Command {
	var addr string
	var noBackfill bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the monitor headless with the RPC API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.RPC.Addr = addr
			}
			if noBackfill {
				off := false
				a.cfg.BackfillNil = &off
			}

			m, err := monitor.New(a.cfg, monitor.WithObserver(a.obs))
			if err != nil {
				return err
			}
			return m.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "RPC listen address (overrides config)")
	cmd.Flags().BoolVar(&noBackfill, "no-backfill", false, "Skip loading recent decisions at startup")

	return cmd
}
