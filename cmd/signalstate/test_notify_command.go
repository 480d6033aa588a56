package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"signalstate/internal/ipc"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("missing notification response")
				}
				stdout := cmd.OutOrStdout()
				switch {
				case resp.Sent:
					fmt.Fprintln(stdout, "Test notification sent")
				case resp.Message != "":
					fmt.Fprintln(stdout, resp.Message)
				default:
					fmt.Fprintln(stdout, "Notification not sent")
				}
				return nil
			})
		},
	}
}
