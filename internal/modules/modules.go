// Package modules defines the report module surface: each module declares
// the search patterns it needs, parses the discovered files and contributes
// sections and data to the report. Modules are composed explicitly and run
// in registration order.
package modules

import (
	"context"
	"errors"
	"log/slog"

	"glimpseqc/internal/config"
	"glimpseqc/internal/report"
	"glimpseqc/pkg/contracts/domain"
)

// ErrNoSamplesFound is returned by a module's Run when none of its files
// yielded data. The runner logs it and continues; it is not a failure.
var ErrNoSamplesFound = errors.New("no samples found")

// Metadata describes a module for the report.
type Metadata struct {
	Href        string `json:"href,omitempty"`
	Description string `json:"description,omitempty"`
	DOI         string `json:"doi,omitempty"`
}

// RunContext carries everything a module needs for one run.
type RunContext struct {
	// Files holds the discovered log files grouped by pattern key.
	Files map[string][]domain.LogFile

	Config *config.Config
	Logger *slog.Logger
	Report *report.Report
}

// FilesFor returns the discovered files for one pattern key, nil when the
// key matched nothing.
func (rc *RunContext) FilesFor(key string) []domain.LogFile {
	if rc == nil || rc.Files == nil {
		return nil
	}
	return rc.Files[key]
}

// Module is one report module.
type Module interface {
	// Name returns the display name, e.g. "GLIMPSE".
	Name() string

	// Anchor returns the HTML anchor prefix, e.g. "glimpse".
	Anchor() string

	// Info returns the module metadata shown in the report.
	Info() Metadata

	// Patterns returns the search patterns the module consumes,
	// keyed like "glimpse/err_spl".
	Patterns() map[string][]string

	// Run parses the module's files from rc and adds sections and data to
	// the report. It returns the number of samples found, or
	// ErrNoSamplesFound when there were none.
	Run(ctx context.Context, rc *RunContext) (int, error)
}
