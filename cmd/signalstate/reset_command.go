package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"signalstate/internal/ipc"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the smoothing window and session aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Reset()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if !resp.Reset {
					fmt.Fprintln(stdout, "Session not reset")
					return nil
				}
				if resp.SessionID != "" {
					fmt.Fprintf(stdout, "Session %s reset\n", resp.SessionID)
					return nil
				}
				fmt.Fprintln(stdout, "Session reset")
				return nil
			})
		},
	}
}
