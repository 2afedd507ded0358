// Package files provides log file discovery and output directory management
// for the GLIMPSE concordance report tool.
//
// This package contains two main components:
//
// Discovery: Walks the configured analysis directories and collects files
// matching the registered search patterns. Ignore rules for directories,
// filenames and paths are applied during the walk, gzip-compressed logs are
// read transparently, and per-pattern statistics are kept for the run
// summary.
//
// Output: Manages the report output layout. The rendered report lands in the
// output directory itself, data exports under the glimpseqc_data
// subdirectory.
//
// Example usage:
//
//	patterns := files.Patterns{
//		"glimpse/err_spl": {"*.error.spl.txt.gz", "*.error.spl.txt"},
//	}
//	discovery := files.NewDiscovery(patterns, cfg.Search, logger)
//	found, stats, err := discovery.Discover(ctx, cfg.Paths.AnalysisDirs)
//
//	out := files.NewOutput(cfg.Paths.OutputDir, logger)
//	if err := out.EnsureLayout(); err != nil {
//		return err
//	}
package files
