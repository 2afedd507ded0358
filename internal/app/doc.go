// Package app orchestrates one report generation run: it wires the module
// registry, walks the analysis directories, runs every module over the
// discovered log files, renders the standalone HTML report and writes the
// configured exports.
//
// # Run flow
//
//	1. Validate that analysis directories were given
//	2. Prepare the output layout (report dir + glimpseqc_data/)
//	3. Start the run profiler when -profile is set, a noop otherwise
//	4. Discover log files matching the registered module patterns
//	5. Run modules in registration order, collecting sections and data
//	6. Render glimpse_report.html
//	7. Export data files, then the xlsx workbook and PDF when enabled
//
// Module failures are logged and skipped so one broken log file never costs
// the rest of the report. Export failures abort the run. When nothing was
// found at all, Run returns ErrNoDataFound and no report is written; the
// CLI turns that into its own exit code.
//
// Serve starts the report preview server over the output directory and
// blocks until the context is cancelled, shutting down gracefully.
//
// The package never calls os.Exit; exit codes are the CLI's business.
package app
