package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"signalstate/internal/ipc"
)

func newPipelineCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start frame admission",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Start()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Started {
					fmt.Fprintln(stdout, "Pipeline started")
					return nil
				}
				if resp.Message != "" {
					fmt.Fprintln(stdout, resp.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Pipeline not started")
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop frame admission (the daemon keeps running)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Stopped {
					fmt.Fprintln(stdout, "Pipeline stopped")
					return nil
				}
				if resp.Message != "" {
					fmt.Fprintln(stdout, resp.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Pipeline not stopped")
				return nil
			})
		},
	}

	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("missing status response")
				}
				if statusJSON {
					return writeJSON(cmd, resp)
				}
				renderStatus(cmd, resp)
				return nil
			})
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Emit status as JSON")

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}

func renderStatus(cmd *cobra.Command, resp *ipc.StatusResponse) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if resp.Running {
		fmt.Fprintln(stdout, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", resp.PID), colorize))
	} else {
		fmt.Fprintln(stdout, renderStatusLine("Daemon", statusWarn, "not running", colorize))
	}
	fmt.Fprintln(stdout, renderStatusLine("Lock", statusInfo, resp.LockPath, colorize))
	fmt.Fprintln(stdout)

	pipe := resp.Pipeline
	for _, line := range renderSectionHeader("Pipeline", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if pipe.Running {
		fmt.Fprintln(stdout, renderStatusLine("Admission", statusOK, fmt.Sprintf("running at %d fps", pipe.RateFPS), colorize))
	} else {
		fmt.Fprintln(stdout, renderStatusLine("Admission", statusWarn, "stopped", colorize))
	}
	fmt.Fprintln(stdout, renderStatusLine("Detector", detectorStatusKind(pipe.Status), pipe.Status, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Emotion", statusInfo, fmt.Sprintf("%s (%.0f%%)", pipe.Emotion, pipe.Confidence*100), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Session", statusInfo, sessionDetail(pipe.SessionID, pipe.SessionStart), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Window", statusInfo, fmt.Sprintf("%d/%d samples", pipe.WindowFill, pipe.WindowSize), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Frames", statusInfo, fmt.Sprintf("accepted %d, dropped %d", pipe.FramesAccepted, pipe.FramesDropped), colorize))
	if pipe.ConsecutiveFailures > 0 {
		fmt.Fprintln(stdout, renderStatusLine("Failures", statusWarn, fmt.Sprintf("%d consecutive", pipe.ConsecutiveFailures), colorize))
	}
	if pipe.Metrics.FPS > 0 {
		detail := fmt.Sprintf("%.1f fps, latency %.0f ms, inference %.0f ms",
			pipe.Metrics.FPS, pipe.Metrics.LatencyMS, pipe.Metrics.InferenceMS)
		fmt.Fprintln(stdout, renderStatusLine("Throughput", statusInfo, detail, colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Consumers", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if len(resp.Consumers) == 0 {
		fmt.Fprintln(stdout, "No consumers subscribed")
		return
	}
	names := make([]string, 0, len(resp.Consumers))
	for _, name := range resp.Consumers {
		names = append(names, viewTitle(name))
	}
	fmt.Fprintln(stdout, renderNameTable("View", names))
}
