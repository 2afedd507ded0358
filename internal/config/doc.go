// Package config loads and validates the glimpseqc run configuration.
//
// # Layering
//
// Values are assembled in order of precedence (later wins):
//
//	1. Built-in defaults (config.Default)
//	2. Optional yaml file (glimpseqc.yml or -config flag)
//	3. Environment variables
//	4. CLI flags, applied by the binaries after Load
//
// # Environment Variables
//
// Overrides follow the GLIMPSEQC_<SECTION>_<KEY> pattern:
//
//	GLIMPSEQC_PATHS_OUTPUT_DIR=/data/qc/run42
//	GLIMPSEQC_REPORT_DATA_FORMAT=json
//	GLIMPSEQC_REPORT_IGNORE_SAMPLES=NA128*,control_*
//	GLIMPSEQC_LOGGING_LEVEL=debug
//
// Search pattern overlays are structural (map of pattern key to globs) and
// can only come from the yaml file.
//
// # Validation
//
// Load validates with struct tags (go-playground/validator) plus a few hand
// checks; messages use the yaml key names users actually type. Both binaries
// refuse to start on an invalid config.
package config
