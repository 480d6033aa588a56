package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// renderNameTable renders a single-column listing, used for consumer views.
func renderNameTable(header string, names []string) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{header})
	for _, name := range names {
		tw.AppendRow(table.Row{name})
	}
	return tw.Render()
}

// renderValueTable renders name/value pairs with the value column right
// aligned, used for probability and counter listings.
func renderValueTable(keyHeader, valueHeader string, rows [][2]string) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{keyHeader, valueHeader})
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
