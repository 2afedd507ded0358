package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glimpseqc/internal/plots"
)

func testReport() *Report {
	r := New("GLIMPSE concordance report", "Sequenced on **NovaSeq**.", "run-42", "0.3.0", []string{"/data/run1"})

	r.AddGeneralStats(
		[]GeneralStatsColumn{
			{Column: plots.Column{Key: "best_gt_rsquared", Title: "Best genotype r-squared"}, Namespace: "GLIMPSE: err_spl"},
		},
		map[string]map[string]float64{
			"NA12878": {"best_gt_rsquared": 0.000008},
		},
	)

	r.AddSection(plots.Section{
		Name:        "Genotype concordance by samples",
		Anchor:      "glimpse-err-spl-table-section",
		Description: "Stats parsed from <code>GLIMPSE2_concordance</code> output, and summarized across all samples.",
		Module:      "glimpse",
		Plot: plots.NewTablePlot(plots.Table{
			ID:    "glimpse-err-spl-table",
			Title: "Glimpse concordance: errors by sample summary",
			Columns: []plots.Column{
				{Key: "variants", Title: "Variants types"},
				{Key: "val_gt_RR", Title: "Genotype Reference-Reference", Min: plots.Float(0), Scale: "YlGn"},
			},
			Rows: []plots.TableRow{
				{Sample: "NA12878", Values: map[string]any{"variants": "GCsS", "val_gt_RR": 851}},
			},
		}),
	})

	r.AddSection(plots.Section{
		Name:   "Glimpse concordance: accuracy by sample",
		Anchor: "glimpse-err-spl-accuracy",
		Module: "glimpse",
		Plot: plots.NewScatterPlot(plots.Scatter{
			ID:    "glimpse-err-spl-accuracy",
			Title: "Glimpse concordance: accuracy by sample",
			Datasets: []plots.ScatterDataset{
				{Name: "best_gt_rsquared", Points: []plots.ScatterPoint{{X: 0, Y: 0.000008, Name: "NA12878"}}},
			},
		}),
	})

	return r
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testReport().RenderHTML(&buf))
	html := buf.String()

	assert.Contains(t, html, "<title>GLIMPSE concordance report</title>")
	assert.Contains(t, html, "run-42")
	assert.Contains(t, html, "glimpseqc 0.3.0")

	// Markdown comment rendered to HTML.
	assert.Contains(t, html, "<strong>NovaSeq</strong>")

	// General statistics table.
	assert.Contains(t, html, "General statistics")
	assert.Contains(t, html, "Best genotype r-squared")
	assert.Contains(t, html, "8e-06")

	// Table section rendered server-side with its anchor and cells.
	assert.Contains(t, html, `id="glimpse-err-spl-table-section"`)
	assert.Contains(t, html, "<code>GLIMPSE2_concordance</code>")
	assert.Contains(t, html, "<td>NA12878</td>")
	assert.Contains(t, html, "<td>851</td>")
	assert.Contains(t, html, "<td>GCsS</td>")

	// Scatter embedded as JSON next to its target div.
	assert.Contains(t, html, `id="glimpse-err-spl-accuracy-plot"`)
	assert.Contains(t, html, `data-target="glimpse-err-spl-accuracy-plot"`)
	assert.Contains(t, html, `"type":"scatter"`)

	// Plotly loaded from the CDN exactly once.
	assert.Equal(t, 1, strings.Count(html, "cdn.plot.ly"))
}

func TestRenderHTML_NoComment(t *testing.T) {
	r := New("t", "", "run-1", "0.3.0", nil)

	var buf bytes.Buffer
	require.NoError(t, r.RenderHTML(&buf))

	assert.NotContains(t, buf.String(), `class="comment"`)
	assert.NotContains(t, buf.String(), "General statistics")
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "GCsS", want: "GCsS"},
		{name: "int", in: 851, want: "851"},
		{name: "int64", in: int64(9), want: "9"},
		{name: "float", in: 0.496, want: "0.496"},
		{name: "float small", in: 0.000008, want: "8e-06"},
		{name: "float whole", in: 100.0, want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}
