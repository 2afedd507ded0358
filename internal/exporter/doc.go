// Package exporter writes the machine-readable artifacts of a report run.
//
// This package contains three main components:
//
// DataExporter: writes one flat data file per module (tsv, json or yaml),
// the glimpseqc_sources.tsv listing and the run metadata json into the
// glimpseqc_data directory.
//
// WorkbookExporter: writes the same tables into a single xlsx workbook with
// one sheet per module plus a general statistics sheet.
//
// PDFExporter: prints the generated HTML report to PDF through headless
// Chrome. A machine without a Chrome binary logs a warning and keeps the
// HTML report as the only rendered artifact.
//
// Example usage:
//
//	data := exporter.NewDataExporter(output, logger)
//	if err := data.Export(rep, exporter.FormatTSV); err != nil {
//		return err
//	}
//
//	workbook := exporter.NewWorkbookExporter(output, logger)
//	if err := workbook.Export(rep); err != nil {
//		return err
//	}
package exporter
