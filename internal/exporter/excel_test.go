package exporter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"glimpseqc/internal/files"
	"glimpseqc/internal/plots"
	"glimpseqc/internal/report"
	"glimpseqc/internal/shared/testutil"
)

func TestWorkbookExporter_Export(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	output := files.NewOutput(t.TempDir(), logger)
	require.NoError(t, output.EnsureLayout())

	rep := exportReport(t)
	rep.AddGeneralStats(
		[]report.GeneralStatsColumn{
			{Column: plots.Column{Key: "best_gt_rsquared"}, Namespace: "GLIMPSE: err_spl"},
		},
		map[string]map[string]float64{
			"NA12878": {"best_gt_rsquared": 0.496},
			"NA24385": {"best_gt_rsquared": 0.91},
		},
	)

	require.NoError(t, NewWorkbookExporter(output, logger).Export(rep))

	f, err := excelize.OpenFile(output.DataPath(WorkbookFilename))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"glimpse_err_spl", "general_stats"}, f.GetSheetList())

	// Module sheet: header row then one row per sample.
	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Sample", cell("glimpse_err_spl", "A1"))
	assert.Equal(t, "variants", cell("glimpse_err_spl", "B1"))
	assert.Equal(t, "NA12878", cell("glimpse_err_spl", "A2"))
	assert.Equal(t, "GCsS", cell("glimpse_err_spl", "B2"))
	assert.Equal(t, "851", cell("glimpse_err_spl", "D2"))
	assert.Equal(t, "NA24385", cell("glimpse_err_spl", "A3"))

	// Numeric cells stay numbers: the cell type is numeric, not text.
	cellType, err := f.GetCellType("glimpse_err_spl", "D2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)

	assert.Equal(t, "Sample", cell("general_stats", "A1"))
	assert.Equal(t, "best_gt_rsquared", cell("general_stats", "B1"))
	assert.Equal(t, "NA12878", cell("general_stats", "A2"))
	assert.Equal(t, "0.496", cell("general_stats", "B2"))
	assert.Equal(t, "0.91", cell("general_stats", "B3"))
}

func TestWorkbookExporter_EmptyReport(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	output := files.NewOutput(t.TempDir(), logger)
	require.NoError(t, output.EnsureLayout())

	rep := report.New("Empty", "", "run-2", "0.0.0", nil)
	require.NoError(t, NewWorkbookExporter(output, logger).Export(rep))

	_, err := os.Stat(output.DataPath(WorkbookFilename))
	assert.True(t, os.IsNotExist(err), "no workbook should be written for an empty report")
}
