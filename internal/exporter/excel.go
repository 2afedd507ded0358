package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"glimpseqc/internal/files"
	"glimpseqc/internal/report"
)

// WorkbookFilename is the xlsx summary written into the data directory.
const WorkbookFilename = "glimpseqc_report.xlsx"

const generalStatsSheet = "general_stats"

// WorkbookExporter writes the merged module data into a single xlsx
// workbook, one sheet per module plus a general statistics sheet.
type WorkbookExporter struct {
	output *files.Output
	logger *slog.Logger
}

// NewWorkbookExporter creates an xlsx exporter writing through the given
// output layout.
func NewWorkbookExporter(output *files.Output, logger *slog.Logger) *WorkbookExporter {
	return &WorkbookExporter{output: output, logger: logger}
}

// Export writes the workbook. Nothing is written when the report carries no
// data at all.
func (e *WorkbookExporter) Export(rep *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := 0
	addSheet := func(name string) error {
		// The fresh workbook starts with one default sheet; rename it for
		// the first sheet, create the rest.
		if sheets == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		sheets++
		return nil
	}

	for _, name := range rep.ModuleDataNames() {
		data, ok := rep.ModuleDataFor(name)
		if !ok {
			continue
		}
		sheet := sheetName(name)
		if err := addSheet(sheet); err != nil {
			return err
		}
		if err := writeDataSheet(f, sheet, data); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}

	if cols, samples, rows := rep.GeneralStats(); len(cols) > 0 {
		if err := addSheet(generalStatsSheet); err != nil {
			return err
		}
		if err := writeGeneralStatsSheet(f, cols, samples, rows); err != nil {
			return fmt.Errorf("write sheet %s: %w", generalStatsSheet, err)
		}
	}

	if sheets == 0 {
		return nil
	}

	path := e.output.DataPath(WorkbookFilename)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	e.logger.Info("wrote xlsx workbook", slog.String("path", path), slog.Int("sheets", sheets))
	return nil
}

func writeDataSheet(f *excelize.File, sheet string, data report.ModuleData) error {
	header := make([]any, 0, len(data.Columns)+1)
	header = append(header, data.KeyColumn)
	for _, col := range data.Columns {
		header = append(header, col)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, row := range data.Rows {
		cells := make([]any, 0, len(row.Values)+1)
		cells = append(cells, row.Key)
		cells = append(cells, row.Values...)
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeGeneralStatsSheet(f *excelize.File, cols []report.GeneralStatsColumn, samples []string, rows map[string]map[string]float64) error {
	header := make([]any, 0, len(cols)+1)
	header = append(header, "Sample")
	for _, col := range cols {
		header = append(header, col.Key)
	}
	if err := setRow(f, generalStatsSheet, 1, header); err != nil {
		return err
	}

	for i, sample := range samples {
		cells := make([]any, 0, len(cols)+1)
		cells = append(cells, sample)
		for _, col := range cols {
			if v, ok := rows[sample][col.Key]; ok {
				cells = append(cells, v)
			} else {
				cells = append(cells, nil)
			}
		}
		if err := setRow(f, generalStatsSheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// setRow writes values into one 1-based row. Values keep their Go types so
// numeric cells stay numeric in the sheet.
func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v); err != nil {
			return err
		}
	}
	return nil
}

// sheetName clips a module data name to the xlsx 31-character sheet limit.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
