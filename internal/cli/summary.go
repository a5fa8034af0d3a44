package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mgpai22/subtrans/internal/pipeline"
)

// prints run statistics: a table on terminals, plain lines otherwise
func printSummary(w io.Writer, report pipeline.Report, targetLanguage string) {
	rows := summaryRows(report, targetLanguage)
	if isTerminalWriter(w) {
		fmt.Fprintln(w, renderSummary(rows))
		return
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %s: %s\n", row[0], row[1])
	}
}

func summaryRows(report pipeline.Report, targetLanguage string) [][2]string {
	return [][2]string{
		{"Target language", targetLanguage},
		{"Cues", strconv.Itoa(report.Cues)},
		{"Batches", strconv.Itoa(report.Batches)},
		{"Oversized cues", strconv.Itoa(report.Oversized)},
		{"Cached batches", strconv.Itoa(report.CachedBatches)},
		{"Requests", strconv.Itoa(report.Requests)},
		{"Retries", strconv.Itoa(report.Retries)},
		{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
		{"Run ID", report.RunID},
	}
}

func renderSummary(rows [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Summary", ""})
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	return tw.Render()
}
