package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"signalstate/internal/ipc"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the latest smoothed emotion state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.State()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp == nil || resp.State == nil {
					fmt.Fprintln(stdout, "No state yet; the pipeline has not processed a frame")
					return nil
				}
				if asJSON {
					return writeJSON(cmd, resp.State)
				}

				state := resp.State
				colorize := shouldColorize(stdout)
				for _, line := range renderSectionHeader("Emotion State", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Emotion", statusOK, fmt.Sprintf("%s (%.0f%%)", state.Emotion, state.Confidence*100), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Detector", detectorStatusKind(state.Status), state.Status, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Face found", statusInfo, yesNo(state.FaceFound), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Sequence", statusInfo, fmt.Sprintf("%d", state.Sequence), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Offset", statusInfo, fmt.Sprintf("%.1fs into session", state.OffsetSeconds), colorize))
				if len(state.Warnings) > 0 {
					fmt.Fprintln(stdout, renderStatusLine("Warnings", statusWarn, strings.Join(state.Warnings, "; "), colorize))
				}
				fmt.Fprintln(stdout)

				labels := make([]string, 0, len(state.Probabilities))
				for label := range state.Probabilities {
					labels = append(labels, label)
				}
				sort.Slice(labels, func(i, j int) bool {
					return state.Probabilities[labels[i]] > state.Probabilities[labels[j]]
				})
				rows := make([][2]string, 0, len(labels))
				for _, label := range labels {
					rows = append(rows, [2]string{label, fmt.Sprintf("%.3f", state.Probabilities[label])})
				}
				fmt.Fprintln(stdout, renderValueTable("Emotion", "Probability", rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the state as JSON")
	return cmd
}
