package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"glimpseqc/internal/app"
	"glimpseqc/internal/config"
	"glimpseqc/internal/infrastructure"
	"glimpseqc/pkg/contracts"
)

// Exit codes. Parse anomalies inside log files never change them; only
// configuration and export failures (1) and an empty result (2) do.
const (
	exitOK     = 0
	exitError  = 1
	exitNoData = 2
)

// Styles degrade to plain text automatically when stdout is not a terminal.
var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	noticeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath    = flag.String("config", "", "path to a config file (default: ./"+config.DefaultConfigFile+" when present)")
		outputDir     = flag.String("o", "", "output directory for the report")
		title         = flag.String("title", "", "report title")
		comment       = flag.String("comment", "", "report comment, rendered as Markdown")
		format        = flag.String("format", "", "data export format: tsv, json or yaml")
		pdf           = flag.Bool("pdf", false, "also render the report to PDF (needs Chrome or Chromium)")
		noXLSX        = flag.Bool("no-xlsx", false, "skip the xlsx workbook export")
		ignoreSamples = flag.String("ignore-samples", "", "comma-separated sample name globs to drop")
		profile       = flag.Bool("profile", false, "write an OpenTelemetry run trace into the data dir")
		serve         = flag.Bool("serve", false, "serve the report after generating it")
		version       = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("glimpseqc %s\n", contracts.Version)
		return exitOK
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	// Flags override the config file and environment, but only when set.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Paths.OutputDir = *outputDir
		case "title":
			cfg.Report.Title = *title
		case "comment":
			cfg.Report.Comment = *comment
		case "format":
			cfg.Report.DataFormat = *format
		case "pdf":
			cfg.Report.PDF = *pdf
		case "no-xlsx":
			cfg.Report.XLSX = !*noXLSX
		case "ignore-samples":
			cfg.Report.IgnoreSamples = splitGlobs(*ignoreSamples)
		}
	})
	if args := flag.Args(); len(args) > 0 {
		cfg.Paths.AnalysisDirs = args
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	if len(cfg.Paths.AnalysisDirs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no analysis directories given")
		usage()
		return exitError
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: initialize logging: %v\n", err)
		return exitError
	}
	defer infrastructure.CloseLogFile()

	printBanner()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(cfg, logger, *profile)
	if err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		return exitError
	}

	result, err := runner.Run(ctx)
	switch {
	case errors.Is(err, app.ErrNoDataFound):
		fmt.Println(noticeStyle.Render("No GLIMPSE concordance logs found.") +
			" Searched: " + strings.Join(cfg.Paths.AnalysisDirs, ", "))
		return exitNoData
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Interrupted.")
		return exitError
	case err != nil:
		logger.Error("run failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	printSummary(result, cfg)

	if *serve {
		if err := runner.Serve(ctx); err != nil {
			logger.Error("preview server failed", slog.String("error", err.Error()))
			return exitError
		}
	}
	return exitOK
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: glimpseqc [flags] <analysis-dir> [<analysis-dir>...]\n\n"+
			"Generate an HTML report from GLIMPSE2_concordance output logs.\n\nFlags:\n")
	flag.PrintDefaults()
}

func splitGlobs(s string) []string {
	var globs []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			globs = append(globs, g)
		}
	}
	return globs
}

func printBanner() {
	fmt.Printf("\n%s %s\n\n", bannerStyle.Render("glimpseqc"), contracts.Version)
}

func printSummary(result *app.RunResult, cfg *config.Config) {
	fmt.Println(successStyle.Render("Report complete"))
	fmt.Printf("  %s %s\n", labelStyle.Render("report:"), result.ReportPath)
	fmt.Printf("  %s %s\n", labelStyle.Render("data:"), result.DataDir)
	fmt.Printf("  %s %d\n", labelStyle.Render("samples:"), result.Samples)
	switch {
	case result.PDFPath != "":
		fmt.Printf("  %s %s\n", labelStyle.Render("pdf:"), result.PDFPath)
	case cfg.Report.PDF:
		fmt.Printf("  %s skipped, no Chrome or Chromium found\n", labelStyle.Render("pdf:"))
	}
	fmt.Println()
}
