package report

import (
	"sort"
	"sync"
	"time"

	"glimpseqc/internal/plots"
	"glimpseqc/pkg/contracts/domain"
)

// Output filenames inside the output directory.
const (
	HTMLFilename = "glimpse_report.html"
	PDFFilename  = "glimpse_report.pdf"
)

// GeneralStatsColumn describes one column of the run-wide summary table.
type GeneralStatsColumn struct {
	plots.Column
	Namespace string `json:"namespace,omitempty"`
}

// ModuleData is one module's parsed data prepared for the file exports. The
// flat key/columns/rows view feeds the tsv export, Raw holds the nested
// structure written by the json and yaml exports.
type ModuleData struct {
	KeyColumn string    `json:"key_column"`
	Columns   []string  `json:"columns"`
	Rows      []DataRow `json:"rows"`
	Raw       any       `json:"raw,omitempty"`
}

// DataRow is one exported row: a key (sample, or sample plus grouping) and
// its values aligned with the parent's Columns.
type DataRow struct {
	Key    string `json:"key"`
	Values []any  `json:"values"`
}

// Report accumulates everything one run produces: metadata, sections,
// general statistics, data sources and the per-module export data. Methods
// are safe for concurrent use.
type Report struct {
	mu sync.Mutex

	title        string
	comment      string
	runID        string
	version      string
	createdAt    time.Time
	analysisDirs []string

	sections    []plots.Section
	generalCols []GeneralStatsColumn
	generalRows map[string]map[string]float64

	sources []domain.DataSource

	dataOrder  []string
	moduleData map[string]ModuleData
}

// New creates an empty report with its run metadata.
func New(title, comment, runID, version string, analysisDirs []string) *Report {
	return &Report{
		title:        title,
		comment:      comment,
		runID:        runID,
		version:      version,
		createdAt:    time.Now(),
		analysisDirs: append([]string(nil), analysisDirs...),
		generalRows:  make(map[string]map[string]float64),
		moduleData:   make(map[string]ModuleData),
	}
}

// Title returns the report title.
func (r *Report) Title() string { return r.title }

// Comment returns the raw markdown comment, "" when unset.
func (r *Report) Comment() string { return r.comment }

// RunID returns the run correlation id.
func (r *Report) RunID() string { return r.runID }

// Version returns the tool version string.
func (r *Report) Version() string { return r.version }

// CreatedAt returns the report creation time.
func (r *Report) CreatedAt() time.Time { return r.createdAt }

// AnalysisDirs returns the searched directories.
func (r *Report) AnalysisDirs() []string {
	return append([]string(nil), r.analysisDirs...)
}

// AddSection appends a section in presentation order.
func (r *Report) AddSection(s plots.Section) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = append(r.sections, s)
}

// Sections returns the sections in the order they were added.
func (r *Report) Sections() []plots.Section {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]plots.Section(nil), r.sections...)
}

// AddGeneralStats merges columns and per-sample values into the run-wide
// summary table. Column keys are expected to be unique across modules.
func (r *Report) AddGeneralStats(cols []GeneralStatsColumn, rows map[string]map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generalCols = append(r.generalCols, cols...)
	for sample, values := range rows {
		if r.generalRows[sample] == nil {
			r.generalRows[sample] = make(map[string]float64, len(values))
		}
		for key, v := range values {
			r.generalRows[sample][key] = v
		}
	}
}

// GeneralStats returns the summary columns and the sample names in sorted
// order together with the value rows.
func (r *Report) GeneralStats() ([]GeneralStatsColumn, []string, map[string]map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	samples := make([]string, 0, len(r.generalRows))
	for sample := range r.generalRows {
		samples = append(samples, sample)
	}
	sort.Strings(samples)

	cols := append([]GeneralStatsColumn(nil), r.generalCols...)
	rows := make(map[string]map[string]float64, len(r.generalRows))
	for sample, values := range r.generalRows {
		copied := make(map[string]float64, len(values))
		for key, v := range values {
			copied[key] = v
		}
		rows[sample] = copied
	}
	return cols, samples, rows
}

// AddDataSource records where one sample's data came from.
func (r *Report) AddDataSource(ds domain.DataSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, ds)
}

// DataSources returns the recorded sources sorted by module, section and
// sample for stable export.
func (r *Report) DataSources() []domain.DataSource {
	r.mu.Lock()
	defer r.mu.Unlock()

	sources := append([]domain.DataSource(nil), r.sources...)
	sort.Slice(sources, func(i, j int) bool {
		a, b := sources[i], sources[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.Sample < b.Sample
	})
	return sources
}

// SetModuleData stores one module's export data under its file stem, e.g.
// "glimpse_err_spl". A repeated name overwrites the previous data and keeps
// the original position.
func (r *Report) SetModuleData(name string, data ModuleData) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.moduleData[name]; !exists {
		r.dataOrder = append(r.dataOrder, name)
	}
	r.moduleData[name] = data
}

// ModuleDataNames returns the export names in the order they were first set.
func (r *Report) ModuleDataNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dataOrder...)
}

// ModuleDataFor returns one module's export data.
func (r *Report) ModuleDataFor(name string) (ModuleData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.moduleData[name]
	return data, ok
}
