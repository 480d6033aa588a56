package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"signalstate/internal/ipc"
)

func newAggregatesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "aggregates",
		Short: "Show per-view session aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Aggregates()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)
				session := resp.SessionID
				if session == "" {
					session = "none"
				}
				for _, line := range renderSectionHeader(fmt.Sprintf("Session Aggregates (%s)", session), colorize) {
					fmt.Fprintln(stdout, line)
				}

				if len(resp.Views) == 0 {
					fmt.Fprintln(stdout, "No consumer views registered")
					return nil
				}
				for _, view := range resp.Views {
					fmt.Fprintf(stdout, "\n%s (%d updates)\n", viewTitle(view.View), view.Updates)
					if len(view.Counters) == 0 {
						fmt.Fprintln(stdout, "  no observations")
						continue
					}
					keys := make([]string, 0, len(view.Counters))
					for key := range view.Counters {
						keys = append(keys, key)
					}
					sort.Strings(keys)
					rows := make([][2]string, 0, len(keys))
					for _, key := range keys {
						rows = append(rows, [2]string{key, fmt.Sprintf("%d", view.Counters[key])})
					}
					fmt.Fprintln(stdout, renderValueTable("Counter", "Value", rows))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit aggregates as JSON")
	return cmd
}

// viewTitle renders a view identifier like "cx" or "research" for display.
func viewTitle(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	if len(name) <= 2 {
		return strings.ToUpper(name)
	}
	return cases.Title(language.Und).String(name)
}
