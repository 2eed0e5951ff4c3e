// Package charts prepares chart data from a listings view and renders it.
// Preparers never fail on empty views or missing columns: they return an
// error wrapping ErrInsufficientData so callers can show a notice instead.
package charts

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/vehdash/internal/analysis"
	"github.com/KaramelBytes/vehdash/internal/dataset"
)

// ErrInsufficientData marks a chart that cannot be drawn from the view.
var ErrInsufficientData = errors.New("insufficient data")

// UnknownGroup labels rows whose color value is null.
const UnknownGroup = "(unknown)"

func insufficient(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, fmt.Sprintf(format, args...))
}

// Mode selects how grouped histograms are drawn.
type Mode string

const (
	Stacked Mode = "stack"
	Overlay Mode = "overlay"
)

// Bin is one histogram bucket [Lo, Hi). The last bin is closed.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// HistogramData is a single-column histogram.
type HistogramData struct {
	Column string `json:"column"`
	Total  int    `json:"total"`
	Bins   []Bin  `json:"bins"`
}

// Histogram bins the non-null values of a numeric column into a fixed
// number of equal-width bins.
func Histogram(view *dataset.Table, col string, bins int) (*HistogramData, error) {
	vals, err := numericColumn(view, col)
	if err != nil {
		return nil, err
	}
	edges, err := binEdges(vals, bins)
	if err != nil {
		return nil, err
	}
	counts := binCounts(vals, edges)
	h := &HistogramData{Column: col, Total: len(vals), Bins: make([]Bin, len(counts))}
	for i, c := range counts {
		h.Bins[i] = Bin{Lo: edges[i], Hi: edges[i+1], Count: c}
	}
	return h, nil
}

// ScatterSeries holds the points of one color group.
type ScatterSeries struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// ScatterData is an x/y scatter, optionally split by a categorical column.
type ScatterData struct {
	X      string          `json:"x"`
	Y      string          `json:"y"`
	Color  string          `json:"color,omitempty"`
	Points int             `json:"points"`
	Series []ScatterSeries `json:"series"`
}

// Scatter keeps rows with both x and y present. When color names a usable
// column the points are grouped by its values, nulls under UnknownGroup.
func Scatter(view *dataset.Table, x, y, color string) (*ScatterData, error) {
	s := view.Schema()
	for _, c := range []string{x, y} {
		if !s.Numeric(c) {
			return nil, missingNumeric(view, c)
		}
	}
	if color != "" && !s.Usable(color) {
		color = ""
	}
	groups := map[string]*ScatterSeries{}
	out := &ScatterData{X: x, Y: y, Color: color}
	for i := 0; i < view.Len(); i++ {
		xv, okx := view.Float(i, x)
		yv, oky := view.Float(i, y)
		if !okx || !oky {
			continue
		}
		name := ""
		if color != "" {
			v, ok := view.Value(i, color)
			if !ok {
				v = UnknownGroup
			}
			name = v
		}
		g := groups[name]
		if g == nil {
			g = &ScatterSeries{Name: name}
			groups[name] = g
		}
		g.X = append(g.X, xv)
		g.Y = append(g.Y, yv)
		out.Points++
	}
	if out.Points == 0 {
		return nil, insufficient("no rows with both %s and %s", x, y)
	}
	for _, name := range groupOrder(groups) {
		out.Series = append(out.Series, *groups[name])
	}
	return out, nil
}

// Group is one series of counts aligned to the categories or bins of its chart.
type Group struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Total  int       `json:"total"`
}

// BreakdownData counts rows per category of X, split by Color.
type BreakdownData struct {
	X          string   `json:"x"`
	Color      string   `json:"color"`
	Categories []string `json:"categories"`
	Groups     []Group  `json:"groups"`
}

// CategoryBreakdown restricts X to its topN most frequent values and counts
// rows per (X, Color) pair. Rows null in either column are dropped.
func CategoryBreakdown(view *dataset.Table, x, color string, topN int) (*BreakdownData, error) {
	s := view.Schema()
	if !s.HasAll(x, color) {
		return nil, insufficient("columns %s and %s are required", x, color)
	}
	top, _ := analysis.TopValues(view, x, topN)
	pos := indexOf(top)
	counts := map[string][]float64{}
	totals := map[string]int{}
	for i := 0; i < view.Len(); i++ {
		xv, okx := view.Value(i, x)
		cv, okc := view.Value(i, color)
		if !okx || !okc {
			continue
		}
		k, ok := pos[xv]
		if !ok {
			continue
		}
		if counts[cv] == nil {
			counts[cv] = make([]float64, len(top))
		}
		counts[cv][k]++
		totals[cv]++
	}
	if len(counts) == 0 {
		return nil, insufficient("no rows with both %s and %s", x, color)
	}
	out := &BreakdownData{X: x, Color: color, Categories: top}
	for _, name := range sortedKeys(counts) {
		out.Groups = append(out.Groups, Group{Name: name, Values: counts[name], Total: totals[name]})
	}
	return out, nil
}

// GroupedHistogramData is a numeric histogram split by a categorical column.
type GroupedHistogramData struct {
	X     string    `json:"x"`
	Color string    `json:"color"`
	Mode  Mode      `json:"mode"`
	Edges []float64 `json:"edges"`
	// Groups are ordered by size, largest first.
	Groups []Group `json:"groups"`
}

// GroupedHistogram bins numeric x per value of color, keeping only the topN
// most frequent color values. All groups share the same bin edges.
func GroupedHistogram(view *dataset.Table, x, color string, topN, bins int, mode Mode) (*GroupedHistogramData, error) {
	s := view.Schema()
	if !s.Numeric(x) {
		return nil, missingNumeric(view, x)
	}
	if !s.Usable(color) {
		return nil, insufficient("column %s is required", color)
	}
	byGroup := map[string][]float64{}
	for i := 0; i < view.Len(); i++ {
		xv, okx := view.Float(i, x)
		cv, okc := view.Value(i, color)
		if okx && okc {
			byGroup[cv] = append(byGroup[cv], xv)
		}
	}
	if len(byGroup) == 0 {
		return nil, insufficient("no rows with both %s and %s", x, color)
	}
	names := make([]string, 0, len(byGroup))
	for k := range byGroup {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		ni, nj := len(byGroup[names[i]]), len(byGroup[names[j]])
		if ni == nj {
			return names[i] < names[j]
		}
		return ni > nj
	})
	if topN > 0 && len(names) > topN {
		names = names[:topN]
	}
	var all []float64
	for _, n := range names {
		all = append(all, byGroup[n]...)
	}
	edges, err := binEdges(all, bins)
	if err != nil {
		return nil, err
	}
	out := &GroupedHistogramData{X: x, Color: color, Mode: mode, Edges: edges}
	for _, n := range names {
		out.Groups = append(out.Groups, Group{Name: n, Values: toFloats(binCounts(byGroup[n], edges)), Total: len(byGroup[n])})
	}
	return out, nil
}

// ComparisonData overlays the distribution of Value for two categories.
type ComparisonData struct {
	Value      string    `json:"value"`
	Category   string    `json:"category"`
	Normalized bool      `json:"normalized"`
	Edges      []float64 `json:"edges"`
	Series     [2]Group  `json:"series"`
}

// ComparisonCandidates lists the n most frequent values of category, the
// choices offered for a comparison.
func ComparisonCandidates(view *dataset.Table, category string, n int) []string {
	if !view.Schema().Usable(category) {
		return nil
	}
	top, _ := analysis.TopValues(view, category, n)
	return top
}

// Comparison builds two series of Value for categories a and b, which must
// differ and both be among the topN most frequent categories. With normalize
// each series is expressed as a percentage of its own total.
func Comparison(view *dataset.Table, value, category, a, b string, topN, bins int, normalize bool) (*ComparisonData, error) {
	s := view.Schema()
	if !s.Numeric(value) {
		return nil, missingNumeric(view, value)
	}
	if !s.Usable(category) {
		return nil, insufficient("column %s is required", category)
	}
	if a == "" || b == "" || a == b {
		return nil, insufficient("select two different %s values", category)
	}
	pos := indexOf(ComparisonCandidates(view, category, topN))
	for _, v := range []string{a, b} {
		if _, ok := pos[v]; !ok {
			return nil, insufficient("%s %q is not among the %d most frequent", category, v, topN)
		}
	}
	var va, vb []float64
	for i := 0; i < view.Len(); i++ {
		x, ok := view.Float(i, value)
		if !ok {
			continue
		}
		switch c, _ := view.Value(i, category); c {
		case a:
			va = append(va, x)
		case b:
			vb = append(vb, x)
		}
	}
	if len(va) == 0 || len(vb) == 0 {
		return nil, insufficient("no %s values for %q and %q", value, a, b)
	}
	edges, err := binEdges(append(append([]float64(nil), va...), vb...), bins)
	if err != nil {
		return nil, err
	}
	out := &ComparisonData{Value: value, Category: category, Normalized: normalize, Edges: edges}
	for i, vals := range [][]float64{va, vb} {
		g := Group{Name: []string{a, b}[i], Values: toFloats(binCounts(vals, edges)), Total: len(vals)}
		if normalize {
			for k := range g.Values {
				g.Values[k] = g.Values[k] * 100 / float64(g.Total)
			}
		}
		out.Series[i] = g
	}
	return out, nil
}

func numericColumn(view *dataset.Table, col string) ([]float64, error) {
	if !view.Schema().Numeric(col) {
		return nil, missingNumeric(view, col)
	}
	vals, _ := view.Floats(col)
	if len(vals) == 0 {
		return nil, insufficient("no %s values", col)
	}
	return vals, nil
}

func missingNumeric(view *dataset.Table, col string) error {
	info, ok := view.Schema().Info(col)
	switch {
	case !ok:
		return fmt.Errorf("%w: %w", ErrInsufficientData, fmt.Errorf("%w: %s", dataset.ErrColumnMissing, col))
	case info.NonNull == 0:
		return fmt.Errorf("%w: %w", ErrInsufficientData, fmt.Errorf("%w: no %s values", dataset.ErrEmptyResult, col))
	default:
		return insufficient("column %s is not numeric", col)
	}
}

// binEdges returns n+1 equal-width edges spanning vals. A constant column
// yields a single unit-wide bin centered on the value. A span too wide for
// float64 cannot be binned.
func binEdges(vals []float64, n int) ([]float64, error) {
	if n < 1 {
		n = 1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []float64{lo - 0.5, hi + 0.5}, nil
	}
	if math.IsInf(hi-lo, 0) {
		return nil, insufficient("values from %g to %g are too far apart to bin", lo, hi)
	}
	width := (hi - lo) / float64(n)
	edges := make([]float64, n+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[n] = hi
	return edges, nil
}

func binCounts(vals, edges []float64) []int {
	n := len(edges) - 1
	counts := make([]int, n)
	lo, width := edges[0], (edges[n]-edges[0])/float64(n)
	for _, v := range vals {
		if v < edges[0] || v > edges[n] {
			continue
		}
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		counts[i]++
	}
	return counts
}

func toFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func indexOf(vals []string) map[string]int {
	m := make(map[string]int, len(vals))
	for i, v := range vals {
		m[v] = i
	}
	return m
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// groupOrder sorts names alphabetically with UnknownGroup last.
func groupOrder(groups map[string]*ScatterSeries) []string {
	keys := sortedKeys(groups)
	for i, k := range keys {
		if k == UnknownGroup {
			keys = append(append(keys[:i:i], keys[i+1:]...), UnknownGroup)
			break
		}
	}
	return keys
}
