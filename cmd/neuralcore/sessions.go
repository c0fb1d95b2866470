package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/neuralcore/rpc"
)

func newSessionsCmd(a *app) *cobra.Command {
	var addr string
	var all, watch bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Query a running monitor's sessions over RPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = "http://" + a.cfg.RPC.Addr
			}
			client := rpc.NewClient(http.DefaultClient, addr)
			marshal := protojson.MarshalOptions{Multiline: true, Indent: "  "}

			show := func(listing *structpb.Struct) error {
				out, err := marshal.Marshal(listing)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			}

			if !watch {
				listing, err := client.ListSessions(cmd.Context(), all)
				if err != nil {
					return err
				}
				return show(listing)
			}

			var printErr error
			err := client.WatchSessions(cmd.Context(), all, func(listing *structpb.Struct) bool {
				printErr = show(listing)
				return printErr == nil
			})
			if printErr != nil {
				return printErr
			}
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Monitor base URL (default http://<rpc.addr>)")
	cmd.Flags().BoolVar(&all, "all", false, "Include sessions for inactive symbols")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Stream updates until interrupted")

	return cmd
}
