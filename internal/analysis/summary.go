package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

// Options controls the dataset summary.
type Options struct {
	// SampleRows determines how many example rows to include in the report;
	// 0 omits them and a negative value uses the default of 5.
	SampleRows int
	// TopValues limits the categorical top-value list per column.
	TopValues int
	// GroupBy computes per-group numeric summaries for the given column names.
	GroupBy []string
	// MaxGroups caps the number of groups reported across all group-by
	// columns, largest first.
	MaxGroups int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for a listings summary.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		TopValues:        8,
		MaxGroups:        20,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly summary of a listings view.
type Report struct {
	Name     string          `json:"name"`
	Rows     int             `json:"rows"`
	Cols     []ColumnSummary `json:"columns"`
	Samples  [][]string      `json:"samples,omitempty"`
	Groups   []GroupResult   `json:"groups,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string       `json:"name"`
	Kind    dataset.Kind `json:"kind"`
	NonNull int          `json:"non_null"`
	Missing int          `json:"missing"`
	Unique  int          `json:"unique,omitempty"`
	// Numeric stats
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string                `json:"key"`
	Size    int                   `json:"size"`
	Metrics map[string]NumSummary `json:"metrics"`
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// Summarize builds a report for t. Numeric statistics use Welford's
// algorithm over the non-null values of numeric columns.
func Summarize(name string, t *dataset.Table, opt Options) *Report {
	rep := &Report{Name: name, Rows: t.Len()}
	schema := t.Schema()
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 5
	}
	for i := 0; i < t.Len() && i < sampleRows; i++ {
		rep.Samples = append(rep.Samples, t.Row(i))
	}

	var numCols []string
	for _, info := range schema.Columns {
		s := ColumnSummary{Name: info.Name, Kind: info.Kind, NonNull: info.NonNull, Missing: info.Missing}
		switch info.Kind {
		case dataset.KindNumeric:
			vals, _ := t.Floats(info.Name)
			summarizeNumeric(&s, vals, opt)
			numCols = append(numCols, info.Name)
		case dataset.KindCategorical:
			vc, _ := ValueCounts(t, info.Name)
			s.Unique = len(vc)
			top := opt.TopValues
			if top <= 0 {
				top = 8
			}
			if len(vc) > top {
				vc = vc[:top]
			}
			s.TopValues = vc
		}
		rep.Cols = append(rep.Cols, s)
	}

	if len(opt.GroupBy) > 0 {
		rep.Groups = groupSummaries(t, opt, numCols, rep)
	}
	if t.Len() == 0 {
		rep.Warnings = append(rep.Warnings, "no rows match the current filters")
	}
	return rep
}

func summarizeNumeric(s *ColumnSummary, vals []float64, opt Options) {
	if len(vals) == 0 {
		return
	}
	var n int
	var mean, m2 float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range vals {
		n++
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}
	s.Min, s.Max, s.Mean = lo, hi, mean
	if n > 1 {
		s.Std = math.Sqrt(m2 / float64(n-1))
	}
	if !opt.Outliers || len(vals) < 8 {
		return
	}
	median, mad := medianMAD(vals)
	thr := opt.OutlierThreshold
	if thr <= 0 {
		thr = 3.5
	}
	s.OutlierThreshold = thr
	if mad == 0 {
		return
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			s.OutliersCount++
		}
		if az > s.OutliersMaxAbsZ {
			s.OutliersMaxAbsZ = az
		}
	}
}

func groupSummaries(t *dataset.Table, opt Options, numCols []string, rep *Report) []GroupResult {
	var keyCols []string
	for _, name := range opt.GroupBy {
		col := strings.ToLower(strings.TrimSpace(name))
		if !t.Has(col) {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("group-by column %q not present", name))
			continue
		}
		keyCols = append(keyCols, col)
	}
	if len(keyCols) == 0 {
		return nil
	}
	type gAcc struct {
		size int
		sum  map[string]float64
		cnt  map[string]int
		min  map[string]float64
		max  map[string]float64
	}
	groups := map[string]*gAcc{}
	for i := 0; i < t.Len(); i++ {
		parts := make([]string, 0, len(keyCols))
		for _, col := range keyCols {
			v, _ := t.Value(i, col)
			parts = append(parts, fmt.Sprintf("%s=%s", col, safeVal(v)))
		}
		key := strings.Join(parts, " | ")
		ga := groups[key]
		if ga == nil {
			ga = &gAcc{sum: map[string]float64{}, cnt: map[string]int{}, min: map[string]float64{}, max: map[string]float64{}}
			groups[key] = ga
		}
		ga.size++
		for _, col := range numCols {
			x, ok := t.Float(i, col)
			if !ok {
				continue
			}
			ga.sum[col] += x
			ga.cnt[col]++
			if m, ok := ga.min[col]; !ok || x < m {
				ga.min[col] = x
			}
			if m, ok := ga.max[col]; !ok || x > m {
				ga.max[col] = x
			}
		}
	}
	out := make([]GroupResult, 0, len(groups))
	for k, ga := range groups {
		gr := GroupResult{Key: k, Size: ga.size, Metrics: map[string]NumSummary{}}
		for _, col := range numCols {
			if ga.cnt[col] == 0 {
				continue
			}
			gr.Metrics[col] = NumSummary{Count: ga.cnt[col], Min: ga.min[col], Max: ga.max[col], Mean: ga.sum[col] / float64(ga.cnt[col])}
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	maxGroups := opt.MaxGroups
	if maxGroups <= 0 {
		maxGroups = 20
	}
	if len(out) > maxGroups {
		out = out[:maxGroups]
	}
	return out
}

// Markdown renders a compact report suitable for the terminal or a download.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %s\n", FormatInt(r.Rows)))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case dataset.KindNumeric:
			b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
			}
		case dataset.KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUP-BY SUMMARY]\n")
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s (n=%d)\n", g.Key, g.Size))
			keys := make([]string, 0, len(g.Metrics))
			for k := range g.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			if len(keys) > 6 {
				keys = keys[:6]
			}
			for _, k := range keys {
				m := g.Metrics[k]
				b.WriteString(fmt.Sprintf("  • %s: mean %.4g (min %.4g, max %.4g)\n", k, m.Mean, m.Min, m.Max))
			}
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
