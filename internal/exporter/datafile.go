package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v2"

	"glimpseqc/internal/files"
	"glimpseqc/internal/report"
	"glimpseqc/pkg/contracts"
)

const (
	// SourcesFilename lists which file each sample's data came from.
	SourcesFilename = "glimpseqc_sources.tsv"

	// MetadataFilename holds the run metadata consumed by the preview
	// server's meta endpoint.
	MetadataFilename = "glimpseqc_data.json"
)

// RunMetadata is the machine-readable run summary written next to the data
// exports.
type RunMetadata struct {
	Title             string   `json:"title"`
	Comment           string   `json:"comment,omitempty"`
	RunID             string   `json:"run_id"`
	Version           string   `json:"version"`
	DataFormatVersion string   `json:"data_format_version"`
	CreatedAt         string   `json:"created_at"`
	AnalysisDirs      []string `json:"analysis_dirs"`
	Modules           []string `json:"modules"`
}

// DataExporter writes the merged module data, the sources listing and the
// run metadata into the report's data directory.
type DataExporter struct {
	output *files.Output
	logger *slog.Logger
}

// NewDataExporter creates a data exporter writing through the given output
// layout.
func NewDataExporter(output *files.Output, logger *slog.Logger) *DataExporter {
	return &DataExporter{output: output, logger: logger}
}

// Export writes one data file per module in the requested format, plus the
// sources tsv and the metadata json. Any write error aborts the export.
func (e *DataExporter) Export(rep *report.Report, format Format) error {
	for _, name := range rep.ModuleDataNames() {
		data, ok := rep.ModuleDataFor(name)
		if !ok {
			continue
		}
		if err := e.exportModule(name, data, format); err != nil {
			return fmt.Errorf("export %s data: %w", name, err)
		}
	}
	if err := e.exportSources(rep); err != nil {
		return fmt.Errorf("export sources: %w", err)
	}
	if err := e.exportMetadata(rep); err != nil {
		return fmt.Errorf("export run metadata: %w", err)
	}
	return nil
}

func (e *DataExporter) exportModule(name string, data report.ModuleData, format Format) error {
	path := e.output.DataPath(fmt.Sprintf("glimpseqc_%s.%s", name, format))

	var (
		payload []byte
		err     error
	)
	switch format {
	case FormatTSV:
		payload, err = encodeTSV(data)
	case FormatJSON:
		payload, err = json.MarshalIndent(data.Raw, "", "  ")
	case FormatYAML:
		payload, err = encodeYAML(data.Raw)
	default:
		return fmt.Errorf("unsupported data format %q", format)
	}
	if err != nil {
		return err
	}

	if err := e.output.WriteFile(path, payload); err != nil {
		return err
	}
	e.logger.Info("wrote module data",
		slog.String("module", name),
		slog.String("path", path),
		slog.Int("rows", len(data.Rows)))
	return nil
}

// encodeTSV renders the flat row view: a header of the upstream column
// names, then one row per record with the key column first.
func encodeTSV(data report.ModuleData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	header := append([]string{data.KeyColumn}, data.Columns...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range data.Rows {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, row.Key)
		for _, v := range row.Values {
			record = append(record, formatCell(v))
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeYAML marshals through a json round-trip so the yaml keys match the
// json export's column names instead of the Go field names.
func encodeYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}

func (e *DataExporter) exportSources(rep *report.Report) error {
	sources := rep.DataSources()
	if len(sources) == 0 {
		return nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	if err := w.Write([]string{"module", "section", "sample", "path"}); err != nil {
		return err
	}
	for _, src := range sources {
		if err := w.Write([]string{src.Module, src.Section, src.Sample, src.Path}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	path := e.output.DataPath(SourcesFilename)
	if err := e.output.WriteFile(path, buf.Bytes()); err != nil {
		return err
	}
	e.logger.Info("wrote data sources", slog.String("path", path), slog.Int("sources", len(sources)))
	return nil
}

func (e *DataExporter) exportMetadata(rep *report.Report) error {
	meta := RunMetadata{
		Title:             rep.Title(),
		Comment:           rep.Comment(),
		RunID:             rep.RunID(),
		Version:           rep.Version(),
		DataFormatVersion: contracts.DataFormatVersion,
		CreatedAt:         rep.CreatedAt().Format(time.RFC3339),
		AnalysisDirs:      rep.AnalysisDirs(),
		Modules:           rep.ModuleDataNames(),
	}

	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return e.output.WriteFile(e.output.DataPath(MetadataFilename), payload)
}
