package analysis

import (
	"math"
	"strconv"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

// Metrics are the headline numbers shown above the data table.
type Metrics struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
	// MeanPrice is nil when price is absent, entirely null, or the view is empty.
	MeanPrice *float64 `json:"mean_price,omitempty"`
}

// ComputeMetrics never fails; an undefined mean is reported as nil.
func ComputeMetrics(view *dataset.Table) Metrics {
	m := Metrics{Rows: view.Len(), Cols: view.Width()}
	prices, err := view.Floats(dataset.ColPrice)
	if err != nil || len(prices) == 0 {
		return m
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))
	if !math.IsNaN(mean) && !math.IsInf(mean, 0) {
		m.MeanPrice = &mean
	}
	return m
}

// MetricsText is Metrics formatted for display.
type MetricsText struct {
	Rows      string `json:"rows"`
	Cols      string `json:"cols"`
	MeanPrice string `json:"mean_price"`
}

// Absent is shown in place of a metric that cannot be computed.
const Absent = "—"

// Text formats the metrics with thousands separators and a rounded mean.
func (m Metrics) Text() MetricsText {
	out := MetricsText{Rows: FormatInt(m.Rows), Cols: strconv.Itoa(m.Cols), MeanPrice: Absent}
	if m.MeanPrice != nil {
		out.MeanPrice = FormatInt(int(math.Round(*m.MeanPrice)))
	}
	return out
}

// FormatInt renders n with comma thousands separators.
func FormatInt(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	b := make([]byte, 0, len(s)+len(s)/3+1)
	if neg {
		b = append(b, '-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b = append(b, s[:lead]...)
	for i := lead; i < len(s); i += 3 {
		b = append(b, ',')
		b = append(b, s[i:i+3]...)
	}
	return string(b)
}
