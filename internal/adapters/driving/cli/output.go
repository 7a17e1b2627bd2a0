package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printTable writes rows as a boxed table on a terminal and as
// tab-separated lines otherwise, so output stays scriptable.
func printTable(w io.Writer, headers []string, rows [][]string) {
	if !isTerminal(w) {
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)

	fmt.Fprintln(w, tw.Render())
}

// printFailures lists report failures, one row each.
func printFailures(w io.Writer, failures []domain.Failure) {
	if len(failures) == 0 {
		return
	}
	rows := make([][]string, len(failures))
	for i, f := range failures {
		channel := f.Channel.String()
		if channel == "" {
			channel = "-"
		}
		rows[i] = []string{f.URI, channel, string(f.Stage), f.Err.Error()}
	}
	fmt.Fprintln(w)
	printTable(w, []string{"SOURCE", "CHANNEL", "STAGE", "ERROR"}, rows)
}

// metadataString returns the string at path, or "-".
func metadataString(md map[string]any, path ...string) string {
	v, ok := domain.Lookup(md, path...)
	if !ok {
		return "-"
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "-"
	}
	return s
}
