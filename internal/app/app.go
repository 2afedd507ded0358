package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"glimpseqc/internal/config"
	"glimpseqc/internal/exporter"
	"glimpseqc/internal/files"
	"glimpseqc/internal/infrastructure"
	"glimpseqc/internal/modules"
	"glimpseqc/internal/modules/glimpse"
	"glimpseqc/internal/report"
	transport "glimpseqc/internal/transport/http"
	"glimpseqc/pkg/contracts"
	"glimpseqc/pkg/contracts/domain"
)

// TraceFilename is where run profiling spans land inside the data dir.
const TraceFilename = "runtime_trace.json"

// ErrNoDataFound is returned by Run when no module found any samples. The
// CLI maps it to its own exit code, distinct from configuration and export
// failures.
var ErrNoDataFound = errors.New("no concordance data found in the analysis directories")

// Runner executes one report generation run end to end: discovery, module
// parsing, HTML rendering and the configured exports.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *modules.Registry

	// profile enables the OpenTelemetry run trace in the data dir.
	profile bool
}

// RunResult summarizes a finished run for the CLI.
type RunResult struct {
	ReportPath string
	DataDir    string

	// PDFPath is set only when the PDF export actually produced a file;
	// it stays empty when Chrome was unavailable and the export degraded
	// to a warning.
	PDFPath string

	Samples    int
	ModulesRun int
}

// NewRunner wires the module registry and returns a Runner.
func NewRunner(cfg *config.Config, logger *slog.Logger, profile bool) (*Runner, error) {
	registry := modules.NewRegistry()
	if err := registry.Register(glimpse.New()); err != nil {
		return nil, fmt.Errorf("register modules: %w", err)
	}

	return &Runner{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		profile:  profile,
	}, nil
}

// Run performs one full report generation run. It returns ErrNoDataFound
// when discovery and parsing yielded nothing, the context error when
// cancelled, and a wrapped error on configuration or export failures.
// Parse-level anomalies never surface here; they are logged by the modules.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	if len(r.cfg.Paths.AnalysisDirs) == 0 {
		return nil, fmt.Errorf("no analysis directories given")
	}

	r.logger.Info("starting run",
		slog.String("version", contracts.Version),
		slog.String("run_id", infrastructure.RunID()),
		slog.Any("analysis_dirs", r.cfg.Paths.AnalysisDirs),
		slog.String("output_dir", r.cfg.Paths.OutputDir))

	output := files.NewOutput(r.cfg.Paths.OutputDir, r.logger)
	if err := output.EnsureLayout(); err != nil {
		return nil, err
	}

	profiler, closeTrace, err := r.startProfiler(output)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Flush pending spans before the trace file goes away.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := profiler.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("profiler shutdown", slog.String("error", err.Error()))
		}
		closeTrace()
	}()

	patterns, err := r.registry.Patterns()
	if err != nil {
		return nil, fmt.Errorf("collect search patterns: %w", err)
	}

	found, err := r.discover(ctx, profiler, patterns)
	if err != nil {
		return nil, err
	}

	rep := report.New(
		r.cfg.Report.Title,
		r.cfg.Report.Comment,
		infrastructure.RunID(),
		contracts.Version,
		r.cfg.Paths.AnalysisDirs,
	)

	samples, ran, err := r.runModules(ctx, profiler, found, rep)
	if err != nil {
		return nil, err
	}

	if len(rep.Sections()) == 0 {
		r.logger.Warn("no module produced any data, skipping report")
		return nil, ErrNoDataFound
	}

	if err := r.renderHTML(ctx, profiler, output, rep); err != nil {
		return nil, err
	}
	if err := r.export(ctx, profiler, output, rep); err != nil {
		return nil, err
	}

	result := &RunResult{
		ReportPath: output.Path(report.HTMLFilename),
		DataDir:    output.DataDir(),
		Samples:    samples,
		ModulesRun: ran,
	}
	if r.cfg.Report.PDF {
		if _, err := os.Stat(output.Path(report.PDFFilename)); err == nil {
			result.PDFPath = output.Path(report.PDFFilename)
		}
	}
	r.logger.Info("run finished",
		slog.String("report", result.ReportPath),
		slog.Int("samples", result.Samples),
		slog.Int("modules", result.ModulesRun))
	return result, nil
}

// Serve starts the report preview server over the output directory and
// blocks until ctx is cancelled or the server fails.
func (r *Runner) Serve(ctx context.Context) error {
	router := transport.NewRouter(r.cfg.Paths.OutputDir, r.logger)
	srv := transport.NewServer(r.cfg.Serve, router, r.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	r.logger.Info("report preview server listening",
		slog.String("address", "http://"+srv.Addr()),
		slog.String("dir", r.cfg.Paths.OutputDir))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("preview server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shut down preview server: %w", err)
	}
	<-errCh
	r.logger.Info("preview server stopped")
	return nil
}

// startProfiler returns the run profiler and a closer for its trace file.
// Without -profile both are cheap noops.
func (r *Runner) startProfiler(output *files.Output) (*infrastructure.Profiler, func(), error) {
	if !r.profile {
		return infrastructure.NoopProfiler(), func() {}, nil
	}

	tracePath := output.DataPath(TraceFilename)
	f, err := output.Create(tracePath)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace file: %w", err)
	}

	profiler, err := infrastructure.NewProfiler(f, contracts.Version, r.logger)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("start run profiler: %w", err)
	}

	r.logger.Info("run profiling enabled", slog.String("trace", tracePath))
	closeTrace := func() {
		if err := f.Close(); err != nil {
			r.logger.Warn("close trace file", slog.String("error", err.Error()))
		}
	}
	return profiler, closeTrace, nil
}

func (r *Runner) discover(ctx context.Context, profiler *infrastructure.Profiler, patterns files.Patterns) (map[string][]domain.LogFile, error) {
	ctx, span := profiler.Start(ctx, "discovery",
		attribute.Int("roots", len(r.cfg.Paths.AnalysisDirs)))

	disc := files.NewDiscovery(patterns, r.cfg.Search, r.logger)
	found, stats, err := disc.Discover(ctx, r.cfg.Paths.AnalysisDirs)
	if err == nil {
		span.SetAttributes(
			attribute.Int("files_scanned", stats.Scanned),
			attribute.Int("files_matched", stats.Matched),
		)
	}
	infrastructure.EndSpan(span, err)

	if err != nil {
		return nil, fmt.Errorf("discover log files: %w", err)
	}
	return found, nil
}

// runModules runs every registered module in registration order. Module
// failures are logged and skipped; only context cancellation aborts the
// loop. Returns the total sample count and how many modules contributed.
func (r *Runner) runModules(ctx context.Context, profiler *infrastructure.Profiler, found map[string][]domain.LogFile, rep *report.Report) (int, int, error) {
	var samples, ran int
	for _, m := range r.registry.Modules() {
		mctx, span := profiler.Start(ctx, "module "+m.Anchor())

		rc := &modules.RunContext{
			Files:  found,
			Config: r.cfg,
			Logger: r.logger.With(slog.String("module", m.Name())),
			Report: rep,
		}
		n, err := m.Run(mctx, rc)

		switch {
		case errors.Is(err, modules.ErrNoSamplesFound):
			infrastructure.EndSpan(span, nil)
			r.logger.Info("module found no samples", slog.String("module", m.Name()))
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			infrastructure.EndSpan(span, err)
			return samples, ran, err
		case err != nil:
			infrastructure.EndSpan(span, err)
			r.logger.Error("module failed",
				slog.String("module", m.Name()),
				slog.String("error", err.Error()))
		default:
			span.SetAttributes(attribute.Int("samples", n))
			infrastructure.EndSpan(span, nil)
			r.logger.Info("module finished",
				slog.String("module", m.Name()),
				slog.Int("samples", n))
			samples += n
			ran++
		}
	}
	return samples, ran, nil
}

func (r *Runner) renderHTML(ctx context.Context, profiler *infrastructure.Profiler, output *files.Output, rep *report.Report) error {
	_, span := profiler.Start(ctx, "render html",
		attribute.Int("sections", len(rep.Sections())))

	htmlPath := output.Path(report.HTMLFilename)
	err := writeHTML(output, htmlPath, rep)
	infrastructure.EndSpan(span, err)
	if err != nil {
		return err
	}

	r.logger.Info("wrote html report", slog.String("path", htmlPath))
	return nil
}

func writeHTML(output *files.Output, path string, rep *report.Report) error {
	f, err := output.Create(path)
	if err != nil {
		return err
	}
	if err := rep.RenderHTML(f); err != nil {
		f.Close()
		return fmt.Errorf("render html report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	return nil
}

// export writes the data files and the optional workbook and PDF. Export
// failures abort the run, unlike parse failures.
func (r *Runner) export(ctx context.Context, profiler *infrastructure.Profiler, output *files.Output, rep *report.Report) error {
	format, err := exporter.ParseFormat(r.cfg.Report.DataFormat)
	if err != nil {
		return err
	}

	_, span := profiler.Start(ctx, "export data",
		attribute.String("format", string(format)))
	err = exporter.NewDataExporter(output, r.logger).Export(rep, format)
	infrastructure.EndSpan(span, err)
	if err != nil {
		return err
	}

	if r.cfg.Report.XLSX {
		_, span := profiler.Start(ctx, "export xlsx")
		err := exporter.NewWorkbookExporter(output, r.logger).Export(rep)
		infrastructure.EndSpan(span, err)
		if err != nil {
			return err
		}
	}

	if r.cfg.Report.PDF {
		pctx, span := profiler.Start(ctx, "export pdf")
		err := exporter.NewPDFExporter(output, r.logger, r.cfg.Report.PDFTimeout).Export(pctx)
		infrastructure.EndSpan(span, err)
		if err != nil {
			return err
		}
	}

	return nil
}
