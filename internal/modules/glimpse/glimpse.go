package glimpse

import (
	"context"
	"log/slog"
	"path"

	"golang.org/x/sync/errgroup"

	"glimpseqc/internal/modules"
	"glimpseqc/pkg/contracts/domain"
)

const (
	moduleName   = "GLIMPSE"
	moduleAnchor = "glimpse"

	patternErrSpl = "glimpse/err_spl"
	patternErrGrp = "glimpse/err_grp"

	sectionErrSpl = "err_spl"
	sectionErrGrp = "err_grp"

	// parseWorkers bounds the number of files parsed concurrently.
	parseWorkers = 4
)

// Module parses GLIMPSE2_concordance output.
type Module struct{}

// New creates the GLIMPSE module.
func New() *Module {
	return &Module{}
}

func (m *Module) Name() string   { return moduleName }
func (m *Module) Anchor() string { return moduleAnchor }

func (m *Module) Info() modules.Metadata {
	return modules.Metadata{
		Href:        "https://odelaneau.github.io/GLIMPSE/",
		Description: "a tool for low-coverage whole genome sequencing imputation, including genotype concordance checks",
		DOI:         "10.1038/s41588-023-01438-3",
	}
}

func (m *Module) Patterns() map[string][]string {
	return map[string][]string{
		patternErrSpl: {"*.error.spl.txt.gz", "*.error.spl.txt"},
		patternErrGrp: {"*.error.grp.txt.gz", "*.error.grp.txt"},
	}
}

// Run parses the discovered concordance logs and contributes the sections,
// general statistics and export data. The errors-by-sample logs run first,
// then the errors-by-frequency-bin logs, matching the report section order.
func (m *Module) Run(ctx context.Context, rc *modules.RunContext) (int, error) {
	splSamples, err := m.runErrSpl(ctx, rc)
	if err != nil {
		return 0, err
	}
	grpSamples, err := m.runErrGrp(ctx, rc)
	if err != nil {
		return 0, err
	}
	if splSamples == 0 && grpSamples == 0 {
		return 0, modules.ErrNoSamplesFound
	}
	return splSamples + grpSamples, nil
}

// runErrSpl handles the errors-by-sample logs: parse each file, merge the
// records across files keyed by the line's sample-name column, then build
// the summary table, the accuracy scatter and the general-stats columns.
func (m *Module) runErrSpl(ctx context.Context, rc *modules.RunContext) (int, error) {
	logFiles := rc.FilesFor(patternErrSpl)
	if len(logFiles) == 0 {
		return 0, nil
	}
	logger := rc.Logger.With(slog.String("module", moduleAnchor), slog.String("section", sectionErrSpl))

	results := make([]domain.ConcordanceBySample, len(logFiles))
	if err := parseAll(ctx, logFiles, func(i int, lf domain.LogFile) {
		results[i] = parseSampleReport(logger.With(slog.String("path", lf.Path)), lf.Content)
	}); err != nil {
		return 0, err
	}

	// Merge in discovery order so overwrite-on-duplicate stays deterministic.
	merged := make(domain.ConcordanceBySample)
	seenFrom := make(map[string]string)
	for i, lf := range logFiles {
		if len(results[i]) == 0 {
			continue
		}
		rc.Report.AddDataSource(domain.DataSource{
			Module:  moduleAnchor,
			Section: sectionErrSpl,
			Sample:  lf.SampleName,
			Path:    lf.Path,
		})
		for sample, rec := range results[i] {
			if previous, ok := seenFrom[sample]; ok {
				logger.Debug("duplicate sample name, overwriting",
					slog.String("sample", sample),
					slog.String("previous", previous),
					slog.String("current", lf.Path))
			}
			seenFrom[sample] = lf.Path
			merged[sample] = rec
		}
	}

	merged = dropIgnoredSamples(logger, merged, rc.Config.Report.IgnoreSamples)
	if len(merged) == 0 {
		return 0, nil
	}
	logger.Info("found concordance by-sample reports", slog.Int("samples", len(merged)))

	rc.Report.SetModuleData("glimpse_err_spl", errSplExportData(merged))
	rc.Report.AddSection(errSplTableSection(merged))
	rc.Report.AddSection(errSplAccuracySection(merged))
	rc.Report.AddGeneralStats(errSplGeneralStats(merged))

	return len(merged), nil
}

// runErrGrp handles the errors-by-frequency-bin logs. One file carries the
// bins of a single sample, so results are keyed by the file's sample name.
func (m *Module) runErrGrp(ctx context.Context, rc *modules.RunContext) (int, error) {
	logFiles := rc.FilesFor(patternErrGrp)
	if len(logFiles) == 0 {
		return 0, nil
	}
	logger := rc.Logger.With(slog.String("module", moduleAnchor), slog.String("section", sectionErrGrp))

	results := make([]map[string]map[int]domain.FrequencyBinConcordance, len(logFiles))
	if err := parseAll(ctx, logFiles, func(i int, lf domain.LogFile) {
		results[i] = parseFrequencyBinReport(logger.With(slog.String("path", lf.Path)), lf.Content)
	}); err != nil {
		return 0, err
	}

	merged := make(domain.FrequencyBinsBySample)
	for i, lf := range logFiles {
		if len(results[i]) == 0 {
			continue
		}
		if _, ok := merged[lf.SampleName]; ok {
			logger.Debug("duplicate sample name, overwriting",
				slog.String("sample", lf.SampleName),
				slog.String("current", lf.Path))
		}
		rc.Report.AddDataSource(domain.DataSource{
			Module:  moduleAnchor,
			Section: sectionErrGrp,
			Sample:  lf.SampleName,
			Path:    lf.Path,
		})
		merged[lf.SampleName] = results[i]
	}

	merged = dropIgnoredSamples(logger, merged, rc.Config.Report.IgnoreSamples)
	if len(merged) == 0 {
		return 0, nil
	}
	logger.Info("found reports by allele frequency bin", slog.Int("samples", len(merged)))

	rc.Report.SetModuleData("glimpse_err_grp", errGrpExportData(merged))
	rc.Report.AddSection(errGrpAccuracySection(merged))

	return len(merged), nil
}

// parseAll parses the files concurrently. Parsing is a pure function of the
// file content, so only the per-index result slot is written from each
// goroutine; callers merge afterwards in file order.
func parseAll(ctx context.Context, logFiles []domain.LogFile, parse func(int, domain.LogFile)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parseWorkers)
	for i, lf := range logFiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parse(i, lf)
			return nil
		})
	}
	return g.Wait()
}

// dropIgnoredSamples removes samples matching the configured ignore globs.
func dropIgnoredSamples[V any](logger *slog.Logger, data map[string]V, globs []string) map[string]V {
	if len(globs) == 0 {
		return data
	}
	kept := make(map[string]V, len(data))
	for sample, value := range data {
		if sampleIgnored(sample, globs) {
			logger.Debug("ignoring sample", slog.String("sample", sample))
			continue
		}
		kept[sample] = value
	}
	return kept
}

func sampleIgnored(sample string, globs []string) bool {
	for _, glob := range globs {
		if ok, err := path.Match(glob, sample); err == nil && ok {
			return true
		}
	}
	return false
}
