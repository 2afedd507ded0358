// Package plots defines the declarative plot and table models embedded in
// the rendered report. The structs serialize to JSON consumed by the report
// template; rendering itself happens client-side.
package plots

// Type identifies the renderer for a plot.
type Type string

const (
	TypeTable     Type = "table"
	TypeScatter   Type = "scatter"
	TypeLineGraph Type = "linegraph"
)

// Float returns a pointer to v, for optional axis bounds where zero is a
// meaningful value.
func Float(v float64) *float64 {
	return &v
}

// Column describes one table column. Scale names a color scale applied to
// the column's values ("YlGn" for good-high metrics, "YlRd" for bad-high).
type Column struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Suffix      string   `json:"suffix,omitempty"`
	Scale       string   `json:"scale,omitempty"`
}

// TableRow holds one sample's values keyed by column key.
type TableRow struct {
	Sample string         `json:"sample"`
	Values map[string]any `json:"values"`
}

// Table is a per-sample statistics table with a fixed column order.
type Table struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// ScatterPoint is a single labelled point.
type ScatterPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name,omitempty"`
}

// ScatterDataset is one switchable dataset of a scatter plot.
type ScatterDataset struct {
	Name   string         `json:"name"`
	YLab   string         `json:"ylab,omitempty"`
	Points []ScatterPoint `json:"points"`
}

// Scatter is a scatter plot with one or more switchable datasets.
type Scatter struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	XLab         string           `json:"xlab,omitempty"`
	YLab         string           `json:"ylab,omitempty"`
	XMin         *float64         `json:"xmin,omitempty"`
	XMax         *float64         `json:"xmax,omitempty"`
	TooltipLabel string           `json:"tt_label,omitempty"`
	Datasets     []ScatterDataset `json:"datasets"`
}

// Series is one named line of (x, y) pairs, ordered by x.
type Series struct {
	Name  string       `json:"name"`
	Pairs [][2]float64 `json:"pairs"`
}

// LineDataset is one switchable dataset of a line graph with its own axis
// configuration.
type LineDataset struct {
	Name   string   `json:"name"`
	XLab   string   `json:"xlab,omitempty"`
	YLab   string   `json:"ylab,omitempty"`
	XLog   bool     `json:"xlog,omitempty"`
	YLog   bool     `json:"ylog,omitempty"`
	XMin   *float64 `json:"xmin,omitempty"`
	XMax   *float64 `json:"xmax,omitempty"`
	YMin   *float64 `json:"ymin,omitempty"`
	YMax   *float64 `json:"ymax,omitempty"`
	Series []Series `json:"series"`
}

// LineGraph is a line graph with one or more switchable datasets.
type LineGraph struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Datasets []LineDataset `json:"datasets"`
}

// Plot wraps exactly one plot body together with its type tag.
type Plot struct {
	Type      Type       `json:"type"`
	Table     *Table     `json:"table,omitempty"`
	Scatter   *Scatter   `json:"scatter,omitempty"`
	LineGraph *LineGraph `json:"linegraph,omitempty"`
}

// NewTablePlot wraps a table for embedding in a section.
func NewTablePlot(t Table) *Plot {
	return &Plot{Type: TypeTable, Table: &t}
}

// NewScatterPlot wraps a scatter plot for embedding in a section.
func NewScatterPlot(s Scatter) *Plot {
	return &Plot{Type: TypeScatter, Scatter: &s}
}

// NewLineGraphPlot wraps a line graph for embedding in a section.
func NewLineGraphPlot(l LineGraph) *Plot {
	return &Plot{Type: TypeLineGraph, LineGraph: &l}
}

// ID returns the wrapped plot's id, or "" for an empty plot.
func (p *Plot) ID() string {
	switch {
	case p == nil:
		return ""
	case p.Table != nil:
		return p.Table.ID
	case p.Scatter != nil:
		return p.Scatter.ID
	case p.LineGraph != nil:
		return p.LineGraph.ID
	}
	return ""
}

// Section is one report section: a heading, an HTML description and an
// optional plot.
type Section struct {
	Name        string `json:"name"`
	Anchor      string `json:"anchor"`
	Description string `json:"description,omitempty"`
	Module      string `json:"module,omitempty"`
	Plot        *Plot  `json:"plot,omitempty"`
}
