package dashboard

import (
	"fmt"

	"github.com/KaramelBytes/vehdash/internal/analysis"
	"github.com/KaramelBytes/vehdash/internal/charts"
	"github.com/KaramelBytes/vehdash/internal/config"
	"github.com/KaramelBytes/vehdash/internal/dataset"
	"github.com/KaramelBytes/vehdash/internal/filter"
)

// Options are the fixed presentation settings.
type Options struct {
	PreviewRows    int
	DefaultColumns int
	ViewerMinAds   int
	Charts         charts.Params
	ChartSize      charts.Size
}

// DefaultOptions returns the stock dashboard layout.
func DefaultOptions() Options {
	return Options{
		PreviewRows:    100,
		DefaultColumns: 8,
		ViewerMinAds:   1000,
		Charts:         charts.DefaultParams(),
		ChartSize:      charts.DefaultSize(),
	}
}

// OptionsFromConfig maps configuration onto Options, keeping defaults for
// unset or non-positive values.
func OptionsFromConfig(c *config.Global) Options {
	o := DefaultOptions()
	if c == nil {
		return o
	}
	setPositive(&o.PreviewRows, c.PreviewRows)
	setPositive(&o.DefaultColumns, c.DefaultColumns)
	setPositive(&o.ViewerMinAds, c.ViewerMinAds)
	setPositive(&o.Charts.HistogramBins, c.HistogramBins)
	setPositive(&o.Charts.StackedTopModels, c.StackedTopModels)
	setPositive(&o.Charts.GroupTopN, c.GroupTopN)
	setPositive(&o.Charts.CompareTopModels, c.CompareTopModels)
	setPositive(&o.Charts.CompareBins, c.CompareBins)
	setPositive(&o.ChartSize.Width, c.ChartWidth)
	setPositive(&o.ChartSize.Height, c.ChartHeight)
	return o
}

func setPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// Page describes one full render of the dashboard.
type Page struct {
	Query   string  `json:"query"`
	Sidebar Sidebar `json:"sidebar"`
	Explore Explore `json:"explore"`
	Viewer  Viewer  `json:"viewer"`
	Charts  Charts  `json:"charts"`
}

// Sidebar holds the filter widgets and the resulting row count.
type Sidebar struct {
	Controls filter.Controls    `json:"controls"`
	Year     *filter.IntRange   `json:"year,omitempty"`
	Price    *filter.FloatRange `json:"price,omitempty"`
	// Types and Conditions are the effective selections. Submitting them
	// back reproduces the same view.
	Types      []string `json:"types,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	Rows       int      `json:"rows"`
	RowsText   string   `json:"rows_text"`
}

// Grid is a table preview.
type Grid struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

// Explore is the data-exploration tab.
type Explore struct {
	AllColumns  []string             `json:"all_columns"`
	Selected    []string             `json:"selected"`
	Preview     Grid                 `json:"preview"`
	Metrics     analysis.Metrics     `json:"metrics"`
	MetricsText analysis.MetricsText `json:"metrics_text"`
	DownloadURL string               `json:"download_url"`
	FileName    string               `json:"file_name"`
}

// Viewer is the minimum-ads-per-model table.
type Viewer struct {
	MinAds       int    `json:"min_ads"`
	IncludeSmall bool   `json:"include_small"`
	Rows         int    `json:"rows"`
	RowsText     string `json:"rows_text"`
	Preview      Grid   `json:"preview"`
	Notice       string `json:"notice,omitempty"`
}

// LegendEntry pairs a series name with its color.
type LegendEntry struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ChartPanel is a prepared chart plus what the page needs to show it.
type ChartPanel struct {
	charts.Panel
	ImageURL string        `json:"image_url,omitempty"`
	Legend   []LegendEntry `json:"legend,omitempty"`
}

// Charts is the chart tab.
type Charts struct {
	Toggles    Toggles      `json:"toggles"`
	Candidates []string     `json:"candidates,omitempty"`
	ModelA     string       `json:"model_a,omitempty"`
	ModelB     string       `json:"model_b,omitempty"`
	Normalize  bool         `json:"normalize"`
	Panels     []ChartPanel `json:"panels"`
}

// View applies the sidebar filters of st to t.
func View(t *dataset.Table, st WidgetState) *dataset.Table {
	return filter.Apply(t, st.FilterState(filter.ControlsFor(t)))
}

// Render is the whole dashboard as a pure function of the source table and
// the widget state.
func Render(t *dataset.Table, st WidgetState, opt Options) Page {
	controls := filter.ControlsFor(t)
	fs := st.FilterState(controls)
	view := filter.Apply(t, fs)
	query := st.Query(opt).Encode()

	page := Page{Query: query}
	page.Sidebar = sidebar(controls, fs, view)
	page.Explore = explore(view, st, opt, query)
	page.Viewer = viewer(view, st, opt)
	page.Charts = chartTab(view, st, opt, query)
	return page
}

func sidebar(c filter.Controls, fs filter.State, view *dataset.Table) Sidebar {
	eff := c.Defaults()
	if fs.Year != nil {
		eff.Year = fs.Year
	}
	if fs.Price != nil {
		eff.Price = fs.Price
	}
	eff.Types, eff.Conditions = fs.Types, fs.Conditions
	return Sidebar{
		Controls:   c,
		Year:       eff.Year,
		Price:      eff.Price,
		Types:      eff.Types,
		Conditions: eff.Conditions,
		Rows:       view.Len(),
		RowsText:   analysis.FormatInt(view.Len()),
	}
}

func explore(view *dataset.Table, st WidgetState, opt Options, query string) Explore {
	all := view.Columns()
	selected := make([]string, 0, len(st.Columns))
	for _, c := range st.Columns {
		if view.Has(c) {
			selected = append(selected, c)
		}
	}
	if !st.ColumnsSet {
		n := opt.DefaultColumns
		if n <= 0 || n > len(all) {
			n = len(all)
		}
		selected = all[:n]
	}
	m := analysis.ComputeMetrics(view)
	return Explore{
		AllColumns:  all,
		Selected:    selected,
		Preview:     grid(view, selected, opt.PreviewRows),
		Metrics:     m,
		MetricsText: m.Text(),
		DownloadURL: withQuery("/download", query),
		FileName:    dataset.ExportFileName,
	}
}

func viewer(view *dataset.Table, st WidgetState, opt Options) Viewer {
	v := Viewer{MinAds: st.MinAds, IncludeSmall: st.IncludeSmall}
	sub := analysis.ModelThreshold(view, st.MinAds, st.IncludeSmall)
	v.Rows = sub.Len()
	v.RowsText = analysis.FormatInt(sub.Len())
	v.Preview = grid(sub, sub.Columns(), opt.PreviewRows)
	switch {
	case !view.Has(dataset.ColModel):
		v.Notice = "No model column in this dataset; showing every listing."
	case sub.Len() == 0 && view.Len() > 0:
		v.Notice = fmt.Sprintf("No model has at least %s ads with the current filters.", analysis.FormatInt(st.MinAds))
	}
	return v
}

func chartTab(view *dataset.Table, st WidgetState, opt Options, query string) Charts {
	params, candidates := PanelParams(view, st, opt)
	out := Charts{Toggles: st.Charts, Normalize: params.Normalize}
	if st.Charts.Compare {
		out.Candidates = candidates
		out.ModelA, out.ModelB = params.ModelA, params.ModelB
	}
	for _, id := range enabledPanels(st.Charts) {
		p := ChartPanel{Panel: charts.Build(view, id, params)}
		if p.Ready() {
			p.ImageURL = withQuery("/charts/"+string(id)+".png", query)
			p.Legend = legend(p.Panel)
		}
		out.Panels = append(out.Panels, p)
	}
	return out
}

// PanelParams resolves chart parameters for one request. An open comparison
// pair defaults to the two most frequent models of the view, which are also
// returned with the rest of the candidates.
func PanelParams(view *dataset.Table, st WidgetState, opt Options) (charts.Params, []string) {
	p := opt.Charts
	p.Normalize = st.Normalize
	p.ModelA, p.ModelB = st.ModelA, st.ModelB
	candidates := charts.ComparisonCandidates(view, dataset.ColModel, p.CompareTopModels)
	if p.ModelA == "" && len(candidates) > 0 {
		p.ModelA = candidates[0]
	}
	if p.ModelB == "" {
		for _, c := range candidates {
			if c != p.ModelA {
				p.ModelB = c
				break
			}
		}
	}
	return p, candidates
}

func enabledPanels(t Toggles) []charts.PanelID {
	var ids []charts.PanelID
	for _, id := range charts.PanelIDs() {
		on := false
		switch id {
		case charts.PanelOdometerHistogram:
			on = t.Histogram
		case charts.PanelOdometerPrice:
			on = t.Scatter
		case charts.PanelTypesByModel:
			on = t.Stacked
		case charts.PanelPriceByCondition, charts.PanelPriceByType:
			on = t.Grouped
		case charts.PanelModelComparison:
			on = t.Compare
		}
		if on {
			ids = append(ids, id)
		}
	}
	return ids
}

func legend(p charts.Panel) []LegendEntry {
	var names []string
	switch {
	case p.Scatter != nil && p.Scatter.Color != "":
		for _, s := range p.Scatter.Series {
			names = append(names, s.Name)
		}
	case p.Breakdown != nil:
		for _, g := range p.Breakdown.Groups {
			names = append(names, g.Name)
		}
	case p.Grouped != nil:
		for _, g := range p.Grouped.Groups {
			names = append(names, g.Name)
		}
	case p.Comparison != nil:
		for _, g := range p.Comparison.Series {
			names = append(names, g.Name)
		}
	}
	out := make([]LegendEntry, len(names))
	for i, n := range names {
		out[i] = LegendEntry{Name: n, Color: charts.GroupColor(i)}
	}
	return out
}

func grid(t *dataset.Table, cols []string, n int) Grid {
	if len(cols) == 0 {
		return Grid{Columns: []string{}, Rows: [][]string{}, Total: t.Len()}
	}
	head := t.Head(n).Select(cols)
	g := Grid{Columns: head.Columns(), Rows: make([][]string, head.Len()), Total: t.Len()}
	for i := range g.Rows {
		g.Rows[i] = head.Row(i)
	}
	return g
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
