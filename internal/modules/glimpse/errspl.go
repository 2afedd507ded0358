package glimpse

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"glimpseqc/internal/plots"
	"glimpseqc/internal/report"
	"glimpseqc/pkg/contracts/domain"
)

const (
	errSplHeader     = "#Genotype concordance by sample (SNPs)"
	errSplFieldCount = 19
)

// parseSampleReport parses one errors-by-sample log into records keyed by
// the sample name column. The first non-empty line must equal the expected
// header or the whole file is rejected. Malformed data lines are logged and
// skipped, never aborting the parse.
func parseSampleReport(logger *slog.Logger, content string) domain.ConcordanceBySample {
	parsed := make(domain.ConcordanceBySample)

	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			start = i
			break
		}
	}
	if start == -1 {
		logger.Warn("concordance report is empty")
		return parsed
	}
	if header := strings.TrimRight(lines[start], "\r"); header != errSplHeader {
		logger.Warn("unexpected concordance report header",
			slog.String("expected", errSplHeader),
			slog.String("got", header))
		return parsed
	}

	for _, raw := range lines[start+1:] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fields := strings.Split(line, " ")
		if strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != errSplFieldCount {
			logger.Warn("skipping line with unexpected field count",
				slog.Int("fields", len(fields)),
				slog.Int("expected", errSplFieldCount),
				slog.String("line", line))
			continue
		}

		sample, record, err := newSampleConcordance(fields)
		if err != nil {
			logger.Warn("skipping unparsable line",
				slog.String("line", line),
				slog.Any("error", err))
			continue
		}
		parsed[sample] = record
	}
	return parsed
}

// newSampleConcordance converts the 19 tokens of a data line into a record
// and its sample-name key. Any non-numeric token in a numeric slot fails the
// whole line.
func newSampleConcordance(fields []string) (string, domain.SampleConcordance, error) {
	var (
		rec    domain.SampleConcordance
		sample = fields[2]
		err    error
	)

	rec.Variants = fields[0]

	ints := []struct {
		dst  *int
		pos  int
		name string
	}{
		{&rec.Bins, 1, "bins"},
		{&rec.ValGtRR, 3, "val_gt_RR"},
		{&rec.ValGtRA, 4, "val_gt_RA"},
		{&rec.ValGtAA, 5, "val_gt_AA"},
		{&rec.FilteredGP, 6, "filtered_gp"},
		{&rec.RRHomMatches, 7, "RR_hom_matches"},
		{&rec.RAHetMatches, 8, "RA_het_matches"},
		{&rec.AAHomMatches, 9, "AA_hom_matches"},
		{&rec.RRHomMismatches, 10, "RR_hom_mismatches"},
		{&rec.RAHetMismatches, 11, "RA_het_mismatches"},
		{&rec.AAHomMismatches, 12, "AA_hom_mismatches"},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(fields[f.pos]); err != nil {
			return "", domain.SampleConcordance{}, fmt.Errorf("column %s: %w", f.name, err)
		}
	}

	floats := []struct {
		dst  *float64
		pos  int
		name string
	}{
		{&rec.RRHomMismatchesRatePercent, 13, "RR_hom_mismatches_rate_percent"},
		{&rec.RAHetMismatchesRatePercent, 14, "RA_het_mismatches_rate_percent"},
		{&rec.AAHomMismatchesRatePercent, 15, "AA_hom_mismatches_rate_percent"},
		{&rec.NonRefDiscordanceRatePercent, 16, "non_reference_discordanc_rate_percent"},
		{&rec.BestGTRsquared, 17, "best_gt_rsquared"},
		{&rec.ImputedDSRsquared, 18, "imputed_ds_rsquared"},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(fields[f.pos], 64); err != nil {
			return "", domain.SampleConcordance{}, fmt.Errorf("column %s: %w", f.name, err)
		}
	}

	return sample, rec, nil
}

// errSplTableColumns returns the summary table column definitions in file
// order.
func errSplTableColumns() []plots.Column {
	return []plots.Column{
		{
			Key:         "variants",
			Title:       "Variants types",
			Description: "Types of variants (SNPs, indels, both)",
		},
		{
			Key:         "bins",
			Title:       "Bins group",
			Description: "Bins group number",
		},
		{
			Key:         "val_gt_RR",
			Title:       "Genotype Reference-Reference",
			Description: "Number of genotypes classified as Reference-Reference",
			Min:         plots.Float(0),
			Scale:       "YlGn",
		},
		{
			Key:         "val_gt_RA",
			Title:       "Genotype Reference-Alternate",
			Description: "Number of genotypes classified as Reference-Alternate",
			Min:         plots.Float(0),
			Scale:       "YlGn",
		},
		{
			Key:         "val_gt_AA",
			Title:       "Genotype Alternate-Alternate",
			Description: "Number of genotypes classified as Alternate-Alternate",
			Min:         plots.Float(0),
			Scale:       "YlGn",
		},
		{
			Key:         "filtered_gp",
			Title:       "Genotype filtered",
			Description: "Number of genotypes filtered",
			Min:         plots.Float(0),
			Scale:       "YlRd",
		},
		{
			Key:         "RR_hom_matches",
			Title:       "Reference-Reference homozygous matches",
			Description: "Number of Reference-Reference hom matches",
			Min:         plots.Float(0),
			Scale:       "YlGn",
		},
		{
			Key:         "RA_het_matches",
			Title:       "Reference-Alternate heterozygous matches",
			Description: "Number of Reference-Alternate het matches",
			Min:         plots.Float(0),
			Scale:       "YlGn",
		},
		{
			Key:         "AA_hom_matches",
			Title:       "Alternate-Alternate homozygous matches",
			Description: "Number of Alternate-Alternate hom matches",
			Min:         plots.Float(0),
			Scale:       "YlGn",
		},
		{
			Key:         "RR_hom_mismatches",
			Title:       "Reference-Reference homozygous mismatches",
			Description: "Number of Reference-Reference hom mismatches",
			Min:         plots.Float(0),
			Scale:       "YlRd",
		},
		{
			Key:         "RA_het_mismatches",
			Title:       "Reference-Alternate heterozygous mismatches",
			Description: "Number of Reference-Alternate het mismatches",
			Min:         plots.Float(0),
			Scale:       "YlRd",
		},
		{
			Key:         "AA_hom_mismatches",
			Title:       "Alternate-Alternate homozygous mismatches",
			Description: "Number of Alternate-Alternate hom mismatches",
			Min:         plots.Float(0),
			Scale:       "YlRd",
		},
		{
			Key:         "RR_hom_mismatches_rate_percent",
			Title:       "Reference-Reference homozygous mismatches rate",
			Description: "Rate of Reference-Reference hom mismatches",
			Min:         plots.Float(0),
			Max:         plots.Float(100),
			Suffix:      "%",
			Scale:       "YlRd",
		},
		{
			Key:         "RA_het_mismatches_rate_percent",
			Title:       "Reference-Alternate heterozygous mismatches rate",
			Description: "Rate of Reference-Alternate het mismatches",
			Min:         plots.Float(0),
			Max:         plots.Float(100),
			Suffix:      "%",
			Scale:       "YlRd",
		},
		{
			Key:         "AA_hom_mismatches_rate_percent",
			Title:       "Alternate-Alternate homozygous mismatches rate",
			Description: "Rate of Alternate-Alternate hom mismatches",
			Min:         plots.Float(0),
			Max:         plots.Float(100),
			Suffix:      "%",
			Scale:       "YlRd",
		},
		{
			Key:         "non_reference_discordanc_rate_percent",
			Title:       "Non-reference discordance rate",
			Description: "Rate of non-reference discordance",
			Min:         plots.Float(0),
			Max:         plots.Float(100),
			Suffix:      "%",
			Scale:       "YlRd",
		},
		{
			Key:         "best_gt_rsquared",
			Title:       "Best genotype r-squared",
			Description: "Best genotype r-squared",
			Min:         plots.Float(0),
			Max:         plots.Float(1),
			Scale:       "YlGn",
		},
		{
			Key:         "imputed_ds_rsquared",
			Title:       "Imputed dosage r-squared",
			Description: "Imputed dosage r-squared",
			Min:         plots.Float(0),
			Max:         plots.Float(1),
			Scale:       "YlGn",
		},
	}
}

// errSplTableSection builds the per-sample summary table section.
func errSplTableSection(data domain.ConcordanceBySample) plots.Section {
	columns := errSplTableColumns()
	rows := make([]plots.TableRow, 0, len(data))
	for _, sample := range sortedSamples(data) {
		fields := data[sample].Fields()
		values := make(map[string]any, len(columns))
		for i, key := range domain.SampleConcordanceColumns {
			values[key] = fields[i]
		}
		rows = append(rows, plots.TableRow{Sample: sample, Values: values})
	}

	return plots.Section{
		Name:        "Genotype concordance by samples",
		Anchor:      "glimpse-err-spl-table-section",
		Description: "Stats parsed from <code>GLIMPSE2_concordance</code> output, and summarized across all samples.",
		Module:      moduleAnchor,
		Plot: plots.NewTablePlot(plots.Table{
			ID:      "glimpse-err-spl-table",
			Title:   "Glimpse concordance: errors by sample summary",
			Columns: columns,
			Rows:    rows,
		}),
	}
}

// accuracyMetrics are the switchable datasets of the accuracy scatter plot,
// in display order.
var accuracyMetrics = []struct {
	Key  string
	YLab string
}{
	{"RR_hom_mismatches_rate_percent", "RR hom mismatches rate"},
	{"RA_het_mismatches_rate_percent", "RA het mismatches rate"},
	{"AA_hom_mismatches_rate_percent", "AA hom mismatches rate"},
	{"non_reference_discordanc_rate_percent", "Non-ref discordance rate"},
	{"best_gt_rsquared", "Best GT r-squared"},
	{"imputed_ds_rsquared", "Imputed DS r-squared"},
}

// errSplAccuracySection builds the accuracy scatter: one point per sample
// (x is the sample's alphabetical index), one switchable dataset per metric.
func errSplAccuracySection(data domain.ConcordanceBySample) plots.Section {
	samples := sortedSamples(data)

	datasets := make([]plots.ScatterDataset, 0, len(accuracyMetrics))
	for _, metric := range accuracyMetrics {
		points := make([]plots.ScatterPoint, 0, len(samples))
		for i, sample := range samples {
			value, ok := data[sample].AccuracyMetric(metric.Key)
			if !ok {
				continue
			}
			points = append(points, plots.ScatterPoint{X: float64(i), Y: value, Name: sample})
		}
		datasets = append(datasets, plots.ScatterDataset{
			Name:   metric.Key,
			YLab:   metric.YLab,
			Points: points,
		})
	}

	return plots.Section{
		Name:        "Glimpse concordance: accuracy by sample",
		Anchor:      "glimpse-err-spl-accuracy",
		Description: "Accuracy plot by sample, switchable between the mismatch rate and r-squared metrics.",
		Module:      moduleAnchor,
		Plot: plots.NewScatterPlot(plots.Scatter{
			ID:           "glimpse-err-spl-accuracy",
			Title:        "Glimpse concordance: accuracy by sample",
			XLab:         "Sample",
			YLab:         "Accuracy",
			TooltipLabel: "Sample",
			Datasets:     datasets,
		}),
	}
}

// errSplGeneralStats returns the two accuracy columns contributed to the
// run-wide summary table.
func errSplGeneralStats(data domain.ConcordanceBySample) ([]report.GeneralStatsColumn, map[string]map[string]float64) {
	columns := []report.GeneralStatsColumn{
		{
			Column: plots.Column{
				Key:         "best_gt_rsquared",
				Title:       "Best genotype r-squared",
				Description: "Best genotype r-squared",
				Min:         plots.Float(0),
				Max:         plots.Float(1),
				Scale:       "YlGn",
			},
			Namespace: "GLIMPSE: err_spl",
		},
		{
			Column: plots.Column{
				Key:         "imputed_ds_rsquared",
				Title:       "Imputed dosage r-squared",
				Description: "Imputed dosage r-squared",
				Min:         plots.Float(0),
				Max:         plots.Float(1),
				Scale:       "YlGn",
			},
			Namespace: "GLIMPSE: err_spl",
		},
	}

	rows := make(map[string]map[string]float64, len(data))
	for sample, rec := range data {
		rows[sample] = map[string]float64{
			"best_gt_rsquared":    rec.BestGTRsquared,
			"imputed_ds_rsquared": rec.ImputedDSRsquared,
		}
	}
	return columns, rows
}

// errSplExportData prepares the errors-by-sample data for the file exports:
// one flat row per sample plus the nested structure for json/yaml.
func errSplExportData(data domain.ConcordanceBySample) report.ModuleData {
	rows := make([]report.DataRow, 0, len(data))
	for _, sample := range sortedSamples(data) {
		rows = append(rows, report.DataRow{Key: sample, Values: data[sample].Fields()})
	}
	return report.ModuleData{
		KeyColumn: "Sample",
		Columns:   domain.SampleConcordanceColumns,
		Rows:      rows,
		Raw:       data,
	}
}

func sortedSamples[V any](m map[string]V) []string {
	samples := make([]string, 0, len(m))
	for sample := range m {
		samples = append(samples, sample)
	}
	sort.Strings(samples)
	return samples
}
