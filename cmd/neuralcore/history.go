package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/neuralcore/backfill"
	"github.com/tailored-agentic-units/neuralcore/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent decisions from the decision log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := history.New(a.cfg.History, history.WithObserver(a.obs))
			records, err := client.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				sessions := make([]any, 0, len(records))
				for _, r := range records {
					sessions = append(sessions, backfill.ToSession(r,
						backfill.WithPrimarySymbol(a.cfg.PrimarySymbol),
						backfill.WithConfidence(a.cfg.Confidence),
					))
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sessions)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tSYMBOL\tACTION\tCONFIDENCE\tREASON")
			for _, r := range records {
				confidence := "-"
				if r.Confidence != nil {
					confidence = fmt.Sprintf("%.0f%%", *r.Confidence*100)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID,
					r.Timestamp.Local().Format("2006-01-02 15:04:05"),
					orDash(r.Symbol),
					orDash(r.Action),
					confidence,
					oneLine(r.Reason),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of decisions to fetch (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the decisions as reconstructed sessions in JSON")

	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 80 {
		return string(r[:79]) + "…"
	}
	return s
}
