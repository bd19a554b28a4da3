package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mrlokans/wp2md/internal/services"
)

// printSummary writes the per-type record counts and image totals of a run.
func printSummary(w io.Writer, report *services.ConversionReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Conversion summary")

	t.AppendHeader(table.Row{"Record type", "Records"})
	for _, c := range report.Counts {
		t.AppendRow(table.Row{c.Type, c.Count})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Skipped (malformed)", report.Skipped})
	if report.Enriched > 0 || report.EnrichmentFailed > 0 {
		t.AppendRow(table.Row{"Enriched", report.Enriched})
		t.AppendRow(table.Row{"Enrichment failed", report.EnrichmentFailed})
	}
	t.AppendRow(table.Row{"Files written", report.Export.RecordsWritten})
	t.AppendRow(table.Row{"Files unchanged", report.Export.RecordsSkipped})
	if report.Export.RecordsFailed > 0 {
		t.AppendRow(table.Row{"Files failed", report.Export.RecordsFailed})
	}
	t.AppendRow(table.Row{"Images found", report.AssetsFound})
	t.AppendRow(table.Row{"Images downloaded", report.Images.Downloaded})
	if report.Images.Failed > 0 {
		t.AppendRow(table.Row{"Images failed", report.Images.Failed})
	}
	t.AppendFooter(table.Row{"Total records", report.TotalRecords()})
	t.Render()

	printSkipped(w, report.Errors)
}

// printSkipped lists the reason for every malformed record.
func printSkipped(w io.Writer, errs []error) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSkipped records:")
	for _, err := range errs {
		fmt.Fprintf(w, "  - %v\n", err)
	}
}
