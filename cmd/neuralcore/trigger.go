package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/neuralcore/history"
)

func newTriggerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Ask the backend to start an analysis run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := history.New(a.cfg.History, history.WithObserver(a.obs))
			if err := client.Trigger(cmd.Context()); err != nil {
				return fmt.Errorf("trigger failed: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "analysis requested")
			return err
		},
	}
}
