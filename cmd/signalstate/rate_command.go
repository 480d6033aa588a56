package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"signalstate/internal/ipc"
)

func newRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <fps>",
		Short: "Change the frame admission rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fps, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse rate %q: %w", args[0], err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetRate(fps)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Admission rate set to %d fps\n", resp.FPS)
				return nil
			})
		},
	}
}
