// Package report assembles the output of one run: metadata, plot sections,
// the run-wide general statistics table, data source records and the
// per-module data handed to the file exports.
//
// A Report is built incrementally by the modules and rendered once at the
// end. The HTML renderer produces a standalone page: tables are rendered
// server-side, scatter and line plots are embedded as JSON and drawn
// client-side with Plotly loaded from its CDN.
//
// # Report Lifecycle
//
//  1. The application creates a Report with the run metadata.
//  2. Each module adds sections, general-stats columns, data sources and
//     export data while it runs.
//  3. RenderHTML writes the page; the exporter package writes the data
//     files from the same Report.
package report
