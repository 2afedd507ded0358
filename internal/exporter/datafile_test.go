package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glimpseqc/internal/files"
	"glimpseqc/internal/report"
	"glimpseqc/internal/shared/testutil"
	"glimpseqc/pkg/contracts/domain"
)

func testConcordance() domain.ConcordanceBySample {
	return domain.ConcordanceBySample{
		"NA12878": {
			Variants:          "GCsS",
			ValGtRR:           851,
			RRHomMismatches:   3,
			BestGTRsquared:    0.496,
			ImputedDSRsquared: 0.000008,
		},
		"NA24385": {
			Variants:       "GCsS",
			ValGtRR:        12,
			BestGTRsquared: 0.91,
		},
	}
}

func exportReport(t *testing.T) *report.Report {
	t.Helper()

	rep := report.New("Test Report", "", "run-1", "0.0.0", []string{"/analysis"})

	data := testConcordance()
	rows := make([]report.DataRow, 0, len(data))
	for _, sample := range []string{"NA12878", "NA24385"} {
		rows = append(rows, report.DataRow{Key: sample, Values: data[sample].Fields()})
	}
	rep.SetModuleData("glimpse_err_spl", report.ModuleData{
		KeyColumn: "Sample",
		Columns:   domain.SampleConcordanceColumns,
		Rows:      rows,
		Raw:       data,
	})
	rep.AddDataSource(domain.DataSource{
		Module:  "glimpse",
		Section: "err_spl",
		Sample:  "NA12878",
		Path:    "/analysis/NA12878.error.spl.txt",
	})
	return rep
}

func newTestExporter(t *testing.T) (*DataExporter, *files.Output) {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	output := files.NewOutput(t.TempDir(), logger)
	require.NoError(t, output.EnsureLayout())
	return NewDataExporter(output, logger), output
}

func TestDataExporter_TSV(t *testing.T) {
	exp, output := newTestExporter(t)

	require.NoError(t, exp.Export(exportReport(t), FormatTSV))

	raw, err := os.ReadFile(output.DataPath("glimpseqc_glimpse_err_spl.tsv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 3)

	header := strings.Split(lines[0], "\t")
	assert.Equal(t, "Sample", header[0])
	assert.Equal(t, "variants", header[1])
	assert.Equal(t, "imputed_ds_rsquared", header[len(header)-1])

	first := strings.Split(lines[1], "\t")
	assert.Equal(t, "NA12878", first[0])
	assert.Equal(t, "GCsS", first[1])
	assert.Equal(t, "851", first[3])
	// Full float precision survives the export.
	assert.Equal(t, "0.496", first[17])
	assert.Equal(t, "8e-06", first[18])
}

func TestDataExporter_JSON(t *testing.T) {
	exp, output := newTestExporter(t)

	require.NoError(t, exp.Export(exportReport(t), FormatJSON))

	raw, err := os.ReadFile(output.DataPath("glimpseqc_glimpse_err_spl.json"))
	require.NoError(t, err)

	var parsed map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	require.Contains(t, parsed, "NA12878")
	assert.Equal(t, "GCsS", parsed["NA12878"]["variants"])
	assert.Equal(t, 851.0, parsed["NA12878"]["val_gt_RR"])
	assert.Equal(t, 0.496, parsed["NA12878"]["best_gt_rsquared"])
}

func TestDataExporter_YAML(t *testing.T) {
	exp, output := newTestExporter(t)

	require.NoError(t, exp.Export(exportReport(t), FormatYAML))

	raw, err := os.ReadFile(output.DataPath("glimpseqc_glimpse_err_spl.yaml"))
	require.NoError(t, err)
	content := string(raw)

	// Keys match the json export's column names, not Go field names.
	assert.Contains(t, content, "NA12878:")
	assert.Contains(t, content, "variants: GCsS")
	assert.Contains(t, content, "best_gt_rsquared: 0.496")
	assert.NotContains(t, content, "bestgtrsquared")
}

func TestDataExporter_Sources(t *testing.T) {
	exp, output := newTestExporter(t)

	require.NoError(t, exp.Export(exportReport(t), FormatTSV))

	raw, err := os.ReadFile(output.DataPath(SourcesFilename))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "module\tsection\tsample\tpath", lines[0])
	assert.Equal(t, "glimpse\terr_spl\tNA12878\t/analysis/NA12878.error.spl.txt", lines[1])
}

func TestDataExporter_Metadata(t *testing.T) {
	exp, output := newTestExporter(t)

	require.NoError(t, exp.Export(exportReport(t), FormatTSV))

	raw, err := os.ReadFile(output.DataPath(MetadataFilename))
	require.NoError(t, err)

	var meta RunMetadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "Test Report", meta.Title)
	assert.Equal(t, "run-1", meta.RunID)
	assert.Equal(t, "v1", meta.DataFormatVersion)
	assert.Equal(t, []string{"/analysis"}, meta.AnalysisDirs)
	assert.Equal(t, []string{"glimpse_err_spl"}, meta.Modules)
	assert.NotEmpty(t, meta.CreatedAt)
}

func TestDataExporter_EmptyReport(t *testing.T) {
	exp, output := newTestExporter(t)
	rep := report.New("Empty", "", "run-2", "0.0.0", nil)

	require.NoError(t, exp.Export(rep, FormatTSV))

	// Only the metadata file is written for an empty run.
	entries, err := os.ReadDir(output.DataDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, MetadataFilename, entries[0].Name())
}

func TestDataExporter_WriteFailure(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	base := filepath.Join(t.TempDir(), "missing")
	output := files.NewOutput(base, logger)
	// Make the data dir path unusable by placing a file where the
	// directory should go.
	require.NoError(t, os.MkdirAll(base, 0o755))
	require.NoError(t, os.WriteFile(output.DataDir(), []byte("x"), 0o644))

	exp := NewDataExporter(output, logger)
	err := exp.Export(exportReport(t), FormatTSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glimpse_err_spl")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "tsv", input: "tsv", want: FormatTSV},
		{name: "json", input: "json", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "unknown", input: "csv", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string", value: "GCsS", want: "GCsS"},
		{name: "int", value: 851, want: "851"},
		{name: "int64", value: int64(9), want: "9"},
		{name: "float", value: 0.496, want: "0.496"},
		{name: "small float", value: 0.000008, want: "8e-06"},
		{name: "whole float", value: 100.0, want: "100"},
		{name: "bool", value: true, want: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.value))
		})
	}
}
