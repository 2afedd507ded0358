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
	errGrpHeader     = "#Genotype concordance by allele frequency bin (SNPs)"
	errGrpFieldCount = 19

	// combinedBinsLabel marks the rows pooling SNPs and indels; the accuracy
	// line plot is drawn from these.
	combinedBinsLabel = "GCsVAF"
)

// parseFrequencyBinReport parses one errors-by-frequency-bin log into
// records nested by group label and bin id. One file holds the bins of a
// single sample. Header and per-line handling follow the same rules as the
// by-sample parser.
func parseFrequencyBinReport(logger *slog.Logger, content string) map[string]map[int]domain.FrequencyBinConcordance {
	parsed := make(map[string]map[int]domain.FrequencyBinConcordance)

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
	if header := strings.TrimRight(lines[start], "\r"); header != errGrpHeader {
		logger.Warn("unexpected concordance report header",
			slog.String("expected", errGrpHeader),
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
		if len(fields) != errGrpFieldCount {
			logger.Warn("skipping line with unexpected field count",
				slog.Int("fields", len(fields)),
				slog.Int("expected", errGrpFieldCount),
				slog.String("line", line))
			continue
		}

		record, err := newFrequencyBinConcordance(fields)
		if err != nil {
			logger.Warn("skipping unparsable line",
				slog.String("line", line),
				slog.Any("error", err))
			continue
		}
		if parsed[record.Variants] == nil {
			parsed[record.Variants] = make(map[int]domain.FrequencyBinConcordance)
		}
		parsed[record.Variants][record.IDN] = record
	}
	return parsed
}

// newFrequencyBinConcordance converts the 19 tokens of a data line into a
// record. Any non-numeric token in a numeric slot fails the whole line.
func newFrequencyBinConcordance(fields []string) (domain.FrequencyBinConcordance, error) {
	var (
		rec domain.FrequencyBinConcordance
		err error
	)

	rec.Variants = fields[0]

	ints := []struct {
		dst  *int
		pos  int
		name string
	}{
		{&rec.IDN, 1, "idn"},
		{&rec.NGenotypes, 2, "n_genotypes"},
		{&rec.ValGtRR, 4, "val_gt_RR"},
		{&rec.ValGtRA, 5, "val_gt_RA"},
		{&rec.ValGtAA, 6, "val_gt_AA"},
		{&rec.FilteredGP, 7, "filtered_gp"},
		{&rec.RRHomMatches, 8, "RR_hom_matches"},
		{&rec.RAHetMatches, 9, "RA_het_matches"},
		{&rec.AAHomMatches, 10, "AA_hom_matches"},
		{&rec.RRHomMismatches, 11, "RR_hom_mismatches"},
		{&rec.RAHetMismatches, 12, "RA_het_mismatches"},
		{&rec.AAHomMismatches, 13, "AA_hom_mismatches"},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(fields[f.pos]); err != nil {
			return domain.FrequencyBinConcordance{}, fmt.Errorf("column %s: %w", f.name, err)
		}
	}

	floats := []struct {
		dst  *float64
		pos  int
		name string
	}{
		{&rec.MeanAF, 3, "mean_AF"},
		{&rec.RRHomMismatchesRatePercent, 14, "RR_hom_mismatches_rate_percent"},
		{&rec.RAHetMismatchesRatePercent, 15, "RA_het_mismatches_rate_percent"},
		{&rec.AAHomMismatchesRatePercent, 16, "AA_hom_mismatches_rate_percent"},
		{&rec.BestGTRsquared, 17, "best_gt_rsquared"},
		{&rec.ImputedDSRsquared, 18, "imputed_ds_rsquared"},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(fields[f.pos], 64); err != nil {
			return domain.FrequencyBinConcordance{}, fmt.Errorf("column %s: %w", f.name, err)
		}
	}

	return rec, nil
}

// errGrpAccuracySection builds the accuracy-by-frequency-bin line graph:
// per sample one series of (mean allele frequency, r-squared) points taken
// from the combined SNPs+indels rows, switchable between the best-genotype
// and imputed-dosage measures.
func errGrpAccuracySection(data domain.FrequencyBinsBySample) plots.Section {
	axis := func(name, ylab string, series []plots.Series) plots.LineDataset {
		return plots.LineDataset{
			Name:   name,
			XLab:   "Minor allele frequency",
			YLab:   ylab,
			XLog:   true,
			YLog:   true,
			XMin:   plots.Float(0),
			XMax:   plots.Float(0.5),
			YMin:   plots.Float(0),
			YMax:   plots.Float(1.1),
			Series: series,
		}
	}

	var bestGT, imputedDS []plots.Series
	for _, sample := range sortedSamples(data) {
		bins := data[sample][combinedBinsLabel]
		if len(bins) == 0 {
			continue
		}

		ids := make([]int, 0, len(bins))
		for id := range bins {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		bestPairs := make([][2]float64, 0, len(ids))
		dosagePairs := make([][2]float64, 0, len(ids))
		for _, id := range ids {
			rec := bins[id]
			bestPairs = append(bestPairs, [2]float64{rec.MeanAF, rec.BestGTRsquared})
			dosagePairs = append(dosagePairs, [2]float64{rec.MeanAF, rec.ImputedDSRsquared})
		}
		bestGT = append(bestGT, plots.Series{Name: sample, Pairs: bestPairs})
		imputedDS = append(imputedDS, plots.Series{Name: sample, Pairs: dosagePairs})
	}

	return plots.Section{
		Name:        "Genotype concordance accuracy by allele frequency bins",
		Anchor:      "glimpse-err-grp-plot-section",
		Description: "Stats parsed from <code>GLIMPSE2_concordance</code> output, and summarized across allele frequency bins.",
		Module:      moduleAnchor,
		Plot: plots.NewLineGraphPlot(plots.LineGraph{
			ID:    "glimpse-err-grp-plot",
			Title: "Glimpse concordance: accuracy by allele frequency bins",
			Datasets: []plots.LineDataset{
				axis("Best genotype r-squared", "Best genotype r-squared", bestGT),
				axis("Imputed dosage r-squared", "Imputed dosage r-squared", imputedDS),
			},
		}),
	}
}

// errGrpExportData prepares the errors-by-frequency-bin data for the file
// exports: one flat row per (sample, label, bin) plus the nested structure
// for json/yaml.
func errGrpExportData(data domain.FrequencyBinsBySample) report.ModuleData {
	var rows []report.DataRow
	for _, sample := range sortedSamples(data) {
		labels := make([]string, 0, len(data[sample]))
		for label := range data[sample] {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			bins := data[sample][label]
			ids := make([]int, 0, len(bins))
			for id := range bins {
				ids = append(ids, id)
			}
			sort.Ints(ids)

			for _, id := range ids {
				rows = append(rows, report.DataRow{Key: sample, Values: bins[id].Fields()})
			}
		}
	}

	return report.ModuleData{
		KeyColumn: "Sample",
		Columns:   domain.FrequencyBinConcordanceColumns,
		Rows:      rows,
		Raw:       data,
	}
}
