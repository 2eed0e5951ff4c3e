package filter

import (
	"math"
	"sort"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

// Controls holds the widget options offered for a table. A nil field means
// the column is absent or empty and its widget is hidden.
type Controls struct {
	Year       *IntRange   `json:"year,omitempty"`
	Types      []string    `json:"types,omitempty"`
	Conditions []string    `json:"conditions,omitempty"`
	Price      *FloatRange `json:"price,omitempty"`
}

// ControlsFor derives slider bounds and picker options from t.
func ControlsFor(t *dataset.Table) Controls {
	s := t.Schema()
	var c Controls
	if s.Usable(dataset.ColModelYear) {
		if lo, hi, ok := bounds(t, dataset.ColModelYear); ok {
			c.Year = &IntRange{Lo: int(math.Floor(lo)), Hi: int(math.Ceil(hi))}
		}
	}
	if s.Usable(dataset.ColType) {
		c.Types = distinct(t, dataset.ColType)
	}
	if s.Usable(dataset.ColCondition) {
		c.Conditions = distinct(t, dataset.ColCondition)
	}
	if s.Usable(dataset.ColPrice) {
		if lo, hi, ok := bounds(t, dataset.ColPrice); ok {
			c.Price = &FloatRange{Lo: math.Floor(lo), Hi: math.Ceil(hi)}
		}
	}
	return c
}

// Defaults is the state that leaves every widget at its initial position:
// full ranges and every option selected.
func (c Controls) Defaults() State {
	st := State{
		Types:      append([]string(nil), c.Types...),
		Conditions: append([]string(nil), c.Conditions...),
	}
	if c.Year != nil {
		y := *c.Year
		st.Year = &y
	}
	if c.Price != nil {
		p := *c.Price
		st.Price = &p
	}
	return st
}

func bounds(t *dataset.Table, col string) (lo, hi float64, ok bool) {
	vals, err := t.Floats(col)
	if err != nil || len(vals) == 0 {
		return 0, 0, false
	}
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}

func distinct(t *dataset.Table, col string) []string {
	vals, _ := t.Strings(col)
	seen := make(map[string]struct{}, 16)
	out := make([]string, 0, 16)
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
