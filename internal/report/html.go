package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"glimpseqc/internal/plots"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// page is the root template context.
type page struct {
	Title        string
	CreatedAt    string
	RunID        string
	Version      string
	CommentHTML  template.HTML
	AnalysisDirs []string
	GeneralStats generalStatsView
	Sections     []sectionView
}

type generalStatsView struct {
	Columns []GeneralStatsColumn
	Samples []string
	Rows    map[string]map[string]float64
}

type sectionView struct {
	Section         plots.Section
	DescriptionHTML template.HTML
	Table           *plots.Table
	PlotID          string
	PlotJSON        template.JS
}

// RenderHTML writes the full standalone report page. Table plots render as
// plain HTML so the report stays readable without JavaScript; scatter and
// line plots are embedded as JSON and drawn client-side.
func (r *Report) RenderHTML(w io.Writer) error {
	tmpl, err := template.New("report.html.tmpl").Funcs(templateFuncs()).ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	cols, samples, rows := r.GeneralStats()
	p := page{
		Title:        r.Title(),
		CreatedAt:    r.CreatedAt().Format("2006-01-02 15:04:05 MST"),
		RunID:        r.RunID(),
		Version:      r.Version(),
		CommentHTML:  renderMarkdown(r.Comment()),
		AnalysisDirs: r.AnalysisDirs(),
		GeneralStats: generalStatsView{Columns: cols, Samples: samples, Rows: rows},
	}

	for _, section := range r.Sections() {
		view := sectionView{
			Section:         section,
			DescriptionHTML: template.HTML(section.Description),
		}
		if plot := section.Plot; plot != nil {
			switch plot.Type {
			case plots.TypeTable:
				view.Table = plot.Table
			default:
				raw, err := json.Marshal(plot)
				if err != nil {
					return fmt.Errorf("marshal plot %q: %w", plot.ID(), err)
				}
				view.PlotID = plot.ID()
				view.PlotJSON = template.JS(raw)
			}
		}
		p.Sections = append(p.Sections, view)
	}

	if err := tmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// renderMarkdown converts the report comment to HTML. An empty comment
// yields empty output so the template can elide the block.
func renderMarkdown(md string) template.HTML {
	if md == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"fmtval": formatValue,
		"stat": func(rows map[string]map[string]float64, sample, key string) string {
			values, ok := rows[sample]
			if !ok {
				return ""
			}
			v, ok := values[key]
			if !ok {
				return ""
			}
			return strconv.FormatFloat(v, 'g', -1, 64)
		},
	}
}

// formatValue renders a table cell. Floats keep their shortest exact form,
// everything else falls back to fmt.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
