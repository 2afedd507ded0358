package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glimpseqc/internal/config"
	"glimpseqc/internal/files"
	"glimpseqc/internal/report"
	"glimpseqc/internal/shared/testutil"
)

const (
	sampleReportContent = "#Genotype concordance by sample (SNPs)\n" +
		"GCsS 0 NA12878 851 3 0 0 602 0 0 3 1 0 0.496 100.000 0.000 100.000 0.000008 0.000008\n"

	frequencyBinReportContent = "#Genotype concordance by allele frequency bin (SNPs)\n" +
		"GCsSAF 0 2838 0.001590 2830 8 0 0 2829 8 0 1 0 0 0.035 0.000 0.000 0.888575 0.882978\n" +
		"GCsVAF 0 2838 0.001590 2830 8 0 0 2829 8 0 1 0 0 0.035 0.000 0.000 0.888575 0.882978\n" +
		"GCsVAF 1 541 0.003170 535 5 1 0 531 5 0 4 0 1 0.926 0.000 16.667 0.796548 0.744563\n"
)

// writeAnalysisDir lays out a minimal analysis tree with one sample's
// by-sample and by-frequency-bin concordance logs.
func writeAnalysisDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NA12878.error.spl.txt"), []byte(sampleReportContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NA12878.error.grp.txt"), []byte(frequencyBinReportContent), 0o644))
	return dir
}

func newTestRunner(t *testing.T, analysisDir, outDir string, profile bool) (*Runner, *testutil.BufferedSlogHandler) {
	t.Helper()
	cfg := config.Default()
	if analysisDir != "" {
		cfg.Paths.AnalysisDirs = []string{analysisDir}
	}
	cfg.Paths.OutputDir = outDir

	logger, handler := testutil.NewTestLogger(t)
	runner, err := NewRunner(cfg, logger, profile)
	require.NoError(t, err)
	return runner, handler
}

func TestRunner_Run_EndToEnd(t *testing.T) {
	analysisDir := writeAnalysisDir(t)
	outDir := t.TempDir()
	runner, handler := newTestRunner(t, analysisDir, outDir, false)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	// One sample from each log kind.
	assert.Equal(t, 2, result.Samples)
	assert.Equal(t, 1, result.ModulesRun)
	assert.Equal(t, filepath.Join(outDir, report.HTMLFilename), result.ReportPath)
	assert.Equal(t, filepath.Join(outDir, files.DataDirName), result.DataDir)

	html, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "GLIMPSE concordance report")
	assert.Contains(t, string(html), "glimpse-err-spl-table-section")
	assert.Contains(t, string(html), "glimpse-err-grp-plot-section")

	for _, name := range []string{
		"glimpseqc_glimpse_err_spl.tsv",
		"glimpseqc_glimpse_err_grp.tsv",
		"glimpseqc_sources.tsv",
		"glimpseqc_data.json",
		"glimpseqc_report.xlsx",
	} {
		assert.FileExists(t, filepath.Join(result.DataDir, name), name)
	}

	// XLSX on, profiling off: no trace file.
	assert.NoFileExists(t, filepath.Join(result.DataDir, TraceFilename))

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "run finished")
}

func TestRunner_Run_NoXLSX(t *testing.T) {
	analysisDir := writeAnalysisDir(t)
	outDir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.AnalysisDirs = []string{analysisDir}
	cfg.Paths.OutputDir = outDir
	cfg.Report.XLSX = false

	logger, _ := testutil.NewTestLogger(t)
	runner, err := NewRunner(cfg, logger, false)
	require.NoError(t, err)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(result.DataDir, "glimpseqc_report.xlsx"))
}

func TestRunner_Run_NoData(t *testing.T) {
	runner, handler := newTestRunner(t, t.TempDir(), t.TempDir(), false)

	result, err := runner.Run(context.Background())
	require.ErrorIs(t, err, ErrNoDataFound)
	assert.Nil(t, result)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "no module produced any data, skipping report")
}

func TestRunner_Run_NoReportWrittenWithoutData(t *testing.T) {
	outDir := t.TempDir()
	runner, _ := newTestRunner(t, t.TempDir(), outDir, false)

	_, err := runner.Run(context.Background())
	require.ErrorIs(t, err, ErrNoDataFound)
	assert.NoFileExists(t, filepath.Join(outDir, report.HTMLFilename))
}

func TestRunner_Run_NoAnalysisDirs(t *testing.T) {
	runner, _ := newTestRunner(t, "", t.TempDir(), false)

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no analysis directories")
}

func TestRunner_Run_Profile(t *testing.T) {
	analysisDir := writeAnalysisDir(t)
	outDir := t.TempDir()
	runner, _ := newTestRunner(t, analysisDir, outDir, true)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	tracePath := filepath.Join(result.DataDir, TraceFilename)
	require.FileExists(t, tracePath)

	trace, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	assert.NotEmpty(t, trace)
	assert.Contains(t, string(trace), "discovery")
}

func TestRunner_Run_ContextCancelled(t *testing.T) {
	analysisDir := writeAnalysisDir(t)
	runner, _ := newTestRunner(t, analysisDir, t.TempDir(), false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_Run_ExportFailureAborts(t *testing.T) {
	analysisDir := writeAnalysisDir(t)
	outDir := t.TempDir()

	// A directory squatting on the data file path makes the export fail.
	blocked := filepath.Join(outDir, files.DataDirName, "glimpseqc_glimpse_err_spl.tsv")
	require.NoError(t, os.MkdirAll(blocked, 0o755))

	runner, _ := newTestRunner(t, analysisDir, outDir, false)
	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glimpse_err_spl")

	// The report itself was rendered before the export stage failed.
	assert.FileExists(t, filepath.Join(outDir, report.HTMLFilename))
}

func TestRunner_Serve_ShutsDownOnCancel(t *testing.T) {
	outDir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.OutputDir = outDir
	cfg.Serve.Port = 0 // ephemeral

	logger, handler := testutil.NewTestLogger(t)
	runner, err := NewRunner(cfg, logger, false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}

	assert.True(t, handler.ContainsMessage("preview server stopped"))
}

func TestRunner_Run_ReportContainsSampleData(t *testing.T) {
	analysisDir := writeAnalysisDir(t)
	outDir := t.TempDir()
	runner, _ := newTestRunner(t, analysisDir, outDir, false)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	tsv, err := os.ReadFile(filepath.Join(result.DataDir, "glimpseqc_glimpse_err_spl.tsv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(tsv)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "NA12878\t"))

	sources, err := os.ReadFile(filepath.Join(result.DataDir, "glimpseqc_sources.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(sources), "err_spl")
	assert.Contains(t, string(sources), "err_grp")
}
