package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "glimpseqc/internal/errors"
	"glimpseqc/internal/exporter"
	"glimpseqc/internal/files"
	"glimpseqc/internal/report"
	"glimpseqc/pkg/contracts"
)

// moduleNamePattern restricts the data endpoint to exported module names.
var moduleNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ReportHandler serves a generated report directory: the HTML page, its
// static data files and the JSON endpoints reading from the data dir.
type ReportHandler struct {
	reportDir string
	logger    *slog.Logger
	errs      *apierrors.Handler
	started   time.Time
}

// NewReportHandler creates a handler rooted at the report directory.
func NewReportHandler(reportDir string, logger *slog.Logger, errs *apierrors.Handler) *ReportHandler {
	return &ReportHandler{
		reportDir: filepath.Clean(reportDir),
		logger:    logger.With(slog.String("handler", "report")),
		errs:      errs,
		started:   time.Now(),
	}
}

// Health handles GET /api/health.
func (h *ReportHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "ok",
		"version": contracts.Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Meta handles GET /api/report/meta: the run metadata written by the data
// exporter, passed through verbatim.
func (h *ReportHandler) Meta(w http.ResponseWriter, r *http.Request) {
	h.serveDataFile(w, r, exporter.MetadataFilename)
}

// Data handles GET /api/report/data/{module}: the module's raw merged data.
// Only available when the run exported json data files.
func (h *ReportHandler) Data(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")
	if !moduleNamePattern.MatchString(module) {
		h.errs.HandleError(w, r, apierrors.NewProblemDetails(
			http.StatusBadRequest,
			apierrors.TypeValidation,
			"Invalid Module Name",
			fmt.Sprintf("module name %q is not valid", module),
			r.URL.Path,
		))
		return
	}
	h.serveDataFile(w, r, fmt.Sprintf("glimpseqc_%s.json", module))
}

func (h *ReportHandler) serveDataFile(w http.ResponseWriter, r *http.Request, name string) {
	full := filepath.Join(h.reportDir, files.DataDirName, name)
	data, err := os.ReadFile(full)
	if err != nil {
		h.errs.HandleError(w, r, fmt.Errorf("read %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(data)
}

// Index handles GET /: the report page itself.
func (h *ReportHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.serveReportFile(w, r, report.HTMLFilename)
}

// File handles GET /report/*: files inside the report directory, with
// traversal outside of it rejected.
func (h *ReportHandler) File(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	// The wildcard arrives escaped when the request carried encoded bytes.
	if unescaped, err := url.PathUnescape(rel); err == nil {
		rel = unescaped
	}
	if rel == "" {
		rel = report.HTMLFilename
	}
	h.serveReportFile(w, r, rel)
}

func (h *ReportHandler) serveReportFile(w http.ResponseWriter, r *http.Request, rel string) {
	// Rooted clean collapses any ../ before the join.
	clean := path.Clean("/" + rel)
	full := filepath.Join(h.reportDir, filepath.FromSlash(clean))
	if full != h.reportDir && !strings.HasPrefix(full, h.reportDir+string(os.PathSeparator)) {
		h.errs.NotFound(w, r)
		return
	}

	f, err := os.Open(full)
	if err != nil {
		h.errs.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		h.errs.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
