package charts

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Size is the pixel size of a rendered chart.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when no size is configured.
func DefaultSize() Size { return Size{Width: 960, Height: 480} }

var paletteHex = []string{
	"1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd",
	"8c564b", "e377c2", "7f7f7f", "bcbd22", "17becf",
}

// GroupColor returns the hex color used for the i-th series of a chart.
func GroupColor(i int) string { return "#" + paletteHex[i%len(paletteHex)] }

func seriesColor(i int) drawing.Color { return drawing.ColorFromHex(paletteHex[i%len(paletteHex)]) }

func withAlpha(c drawing.Color, a uint8) drawing.Color {
	c.A = a
	return c
}

// RenderPNG draws p as a PNG image. Panels that carry an error are not drawn
// and the error is returned unchanged.
func RenderPNG(w io.Writer, p Panel, size Size) error {
	if p.Err != nil {
		return p.Err
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize()
	}
	switch {
	case p.Histogram != nil:
		return renderHistogram(w, p.Title, p.Histogram, size)
	case p.Scatter != nil:
		return renderScatter(w, p.Title, p.Scatter, size)
	case p.Breakdown != nil:
		return renderBreakdown(w, p.Title, p.Breakdown, size)
	case p.Grouped != nil && p.Grouped.Mode == Stacked:
		return renderStackedBins(w, p.Title, p.Grouped, size)
	case p.Grouped != nil:
		return renderOverlay(w, p.Title, p.Grouped.X, p.Grouped.Edges, p.Grouped.Groups, "count", size)
	case p.Comparison != nil:
		yName := "count"
		if p.Comparison.Normalized {
			yName = "percent"
		}
		return renderOverlay(w, p.Title, p.Comparison.Value, p.Comparison.Edges, p.Comparison.Series[:], yName, size)
	}
	return fmt.Errorf("chart %s has no data", p.ID)
}

func renderHistogram(w io.Writer, title string, h *HistogramData, size Size) error {
	step := labelStep(len(h.Bins))
	bars := make([]chart.Value, len(h.Bins))
	maxCount := 0.0
	fill := seriesColor(0)
	for i, b := range h.Bins {
		label := ""
		if i%step == 0 {
			label = compact(b.Lo)
		}
		bars[i] = chart.Value{Value: float64(b.Count), Label: label, Style: chart.Style{FillColor: fill, StrokeColor: fill}}
		maxCount = math.Max(maxCount, float64(b.Count))
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   barWidth(size.Width, len(bars)),
		BarSpacing: 1,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: headroom(maxCount)}},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

func renderScatter(w io.Writer, title string, s *ScatterData, size Size) error {
	var xs, ys []float64
	series := make([]chart.Series, 0, len(s.Series))
	for i, g := range s.Series {
		c := seriesColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    g.Name,
			XValues: g.X,
			YValues: g.Y,
			Style: chart.Style{
				StrokeColor: drawing.ColorTransparent,
				DotWidth:    2.5,
				DotColor:    withAlpha(c, 102),
			},
		})
		xs = append(xs, g.X...)
		ys = append(ys, g.Y...)
	}
	graph := chart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: s.X, Range: paddedRange(xs), ValueFormatter: compactFormatter},
		YAxis:      chart.YAxis{Name: s.Y, Range: paddedRange(ys), ValueFormatter: compactFormatter},
		Series:     series,
	}
	return graph.Render(chart.PNG, w)
}

func renderBreakdown(w io.Writer, title string, b *BreakdownData, size Size) error {
	n := len(b.Categories)
	xs := make([]float64, 0, 4*n)
	// go-chart takes the axis range from the ticks, so blank ticks pin both
	// ends; a single category would otherwise give a zero-width axis.
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: 0})
	for k, cat := range b.Categories {
		x := float64(k)
		xs = append(xs, x+0.1, x+0.1, x+0.9, x+0.9)
		ticks = append(ticks, chart.Tick{Value: x + 0.5, Label: cat})
	}
	ticks = append(ticks, chart.Tick{Value: float64(n)})
	shape := func(vals []float64) []float64 {
		ys := make([]float64, 0, 4*len(vals))
		for _, v := range vals {
			ys = append(ys, 0, v, v, 0)
		}
		return ys
	}
	xAxis := chart.XAxis{
		Name:  b.X,
		Range: &chart.ContinuousRange{Min: 0, Max: float64(n)},
		Ticks: ticks,
		Style: chart.Style{TextRotationDegrees: 45},
	}
	return renderStacked(w, title, xs, shape, b.Groups, xAxis, size)
}

func renderStackedBins(w io.Writer, title string, g *GroupedHistogramData, size Size) error {
	n := len(g.Edges) - 1
	xs := make([]float64, 0, 2*n)
	for k := 0; k < n; k++ {
		xs = append(xs, g.Edges[k], g.Edges[k+1])
	}
	shape := func(vals []float64) []float64 {
		ys := make([]float64, 0, 2*len(vals))
		for _, v := range vals {
			ys = append(ys, v, v)
		}
		return ys
	}
	xAxis := chart.XAxis{
		Name:           g.X,
		Range:          &chart.ContinuousRange{Min: g.Edges[0], Max: g.Edges[n]},
		ValueFormatter: compactFormatter,
	}
	return renderStacked(w, title, xs, shape, g.Groups, xAxis, size)
}

// renderStacked draws cumulative totals back to front with opaque fills,
// so each group shows as the band between its total and the one below.
func renderStacked(w io.Writer, title string, xs []float64, shape func([]float64) []float64, groups []Group, xAxis chart.XAxis, size Size) error {
	if len(groups) == 0 || len(xs) == 0 {
		return insufficient("nothing to stack")
	}
	cum := make([][]float64, len(groups))
	running := make([]float64, len(groups[0].Values))
	maxY := 0.0
	for i, g := range groups {
		for k, v := range g.Values {
			running[k] += v
			maxY = math.Max(maxY, running[k])
		}
		cum[i] = append([]float64(nil), running...)
	}
	series := make([]chart.Series, 0, len(groups))
	for i := len(groups) - 1; i >= 0; i-- {
		c := seriesColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    groups[i].Name,
			XValues: xs,
			YValues: shape(cum[i]),
			Style:   chart.Style{StrokeColor: c, StrokeWidth: 1, FillColor: c},
		})
	}
	graph := chart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: "count", Range: &chart.ContinuousRange{Min: 0, Max: headroom(maxY)}},
		Series:     series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// renderOverlay draws each group as a translucent step area so overlapping
// distributions stay visible.
func renderOverlay(w io.Writer, title, xName string, edges []float64, groups []Group, yName string, size Size) error {
	series := make([]chart.Series, 0, len(groups))
	maxY := 0.0
	for i, g := range groups {
		xs := make([]float64, 0, 2*len(g.Values))
		ys := make([]float64, 0, 2*len(g.Values))
		for k, v := range g.Values {
			xs = append(xs, edges[k], edges[k+1])
			ys = append(ys, v, v)
			maxY = math.Max(maxY, v)
		}
		c := seriesColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    g.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: c,
				StrokeWidth: 1.5,
				FillColor:   withAlpha(c, 90),
			},
		})
	}
	graph := chart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: xName, Range: &chart.ContinuousRange{Min: edges[0], Max: edges[len(edges)-1]}, ValueFormatter: compactFormatter},
		YAxis:      chart.YAxis{Name: yName, Range: &chart.ContinuousRange{Min: 0, Max: headroom(maxY)}},
		Series:     series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

func paddedRange(vals []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.03
	if math.IsInf(pad, 0) {
		pad = 0
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func headroom(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.05
}

func barWidth(canvas, n int) int {
	if n <= 0 {
		return 10
	}
	w := (canvas-80)/n - 2
	if w < 2 {
		return 2
	}
	if w > 60 {
		return 60
	}
	return w
}

func labelStep(n int) int {
	if n <= 12 {
		return 1
	}
	return int(math.Ceil(float64(n) / 10))
}

func compactFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return compact(f)
	}
	return fmt.Sprint(v)
}

func compact(f float64) string {
	a := math.Abs(f)
	switch {
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case a >= 1e4:
		return fmt.Sprintf("%.0fk", f/1e3)
	case a >= 1e3:
		return fmt.Sprintf("%.1fk", f/1e3)
	default:
		return fmt.Sprintf("%.0f", f)
	}
}
