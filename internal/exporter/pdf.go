package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"glimpseqc/internal/files"
	"glimpseqc/internal/report"
)

// chromeBinaries are the executables probed before launching the PDF export.
var chromeBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

// PDFExporter renders the generated HTML report to PDF with headless Chrome.
type PDFExporter struct {
	output  *files.Output
	logger  *slog.Logger
	timeout time.Duration
}

// NewPDFExporter creates a PDF exporter. The timeout bounds the whole
// navigate-and-print run; zero means no limit.
func NewPDFExporter(output *files.Output, logger *slog.Logger, timeout time.Duration) *PDFExporter {
	return &PDFExporter{output: output, logger: logger, timeout: timeout}
}

// Export prints the HTML report to glimpse_report.pdf. A missing browser is
// a warning, not an error: the HTML report is the primary artifact and must
// stay usable without the PDF.
func (e *PDFExporter) Export(ctx context.Context) error {
	htmlPath, err := filepath.Abs(e.output.Path(report.HTMLFilename))
	if err != nil {
		return fmt.Errorf("resolve report path: %w", err)
	}
	if _, err := os.Stat(htmlPath); err != nil {
		return fmt.Errorf("report html not found: %w", err)
	}

	if !chromeAvailable() {
		e.logger.Warn("no Chrome or Chromium binary found, skipping PDF export")
		return nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", true))
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("file://" + htmlPath),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	}
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	pdfPath := e.output.Path(report.PDFFilename)
	if err := e.output.WriteFile(pdfPath, pdf); err != nil {
		return err
	}
	e.logger.Info("wrote pdf report", slog.String("path", pdfPath), slog.Int("bytes", len(pdf)))
	return nil
}

func chromeAvailable() bool {
	for _, name := range chromeBinaries {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
