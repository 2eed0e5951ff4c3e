// Package filter applies the sidebar constraints to the listings table.
package filter

import (
	"github.com/KaramelBytes/vehdash/internal/dataset"
)

// IntRange is a closed integer interval.
type IntRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// FloatRange is a closed numeric interval.
type FloatRange struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// State is the set of user-chosen constraints. A nil range means the
// column's observed bounds; an empty selection means no restriction.
type State struct {
	Year       *IntRange   `json:"year,omitempty"`
	Types      []string    `json:"types,omitempty"`
	Conditions []string    `json:"conditions,omitempty"`
	Price      *FloatRange `json:"price,omitempty"`
}

// Predicate is a pure row test bound to one column.
type Predicate interface {
	Column() string
	Match(t *dataset.Table, row int) bool
}

// NumericRange keeps rows whose value lies in [Lo, Hi]. Nulls never match.
type NumericRange struct {
	Col    string
	Lo, Hi float64
}

func (p NumericRange) Column() string { return p.Col }

func (p NumericRange) Match(t *dataset.Table, row int) bool {
	x, ok := t.Float(row, p.Col)
	return ok && x >= p.Lo && x <= p.Hi
}

// InSet keeps rows whose value is one of the selected values. Nulls never match.
type InSet struct {
	Col    string
	values map[string]struct{}
}

// NewInSet builds a set predicate over values.
func NewInSet(col string, values []string) InSet {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return InSet{Col: col, values: m}
}

func (p InSet) Column() string { return p.Col }

func (p InSet) Match(t *dataset.Table, row int) bool {
	v, ok := t.Value(row, p.Col)
	if !ok {
		return false
	}
	_, in := p.values[v]
	return in
}

// Predicates returns the active predicates for st over t. A predicate is
// active only when its column exists and holds at least one non-null value.
// Empty type or condition selections produce no predicate.
func Predicates(t *dataset.Table, st State) []Predicate {
	ctl := ControlsFor(t)
	var out []Predicate
	if ctl.Year != nil {
		r := *ctl.Year
		if st.Year != nil {
			r = ordered(*st.Year)
		}
		out = append(out, NumericRange{Col: dataset.ColModelYear, Lo: float64(r.Lo), Hi: float64(r.Hi)})
	}
	if ctl.Types != nil && len(st.Types) > 0 {
		out = append(out, NewInSet(dataset.ColType, st.Types))
	}
	if ctl.Conditions != nil && len(st.Conditions) > 0 {
		out = append(out, NewInSet(dataset.ColCondition, st.Conditions))
	}
	if ctl.Price != nil {
		r := *ctl.Price
		if st.Price != nil {
			r = *st.Price
			if r.Lo > r.Hi {
				r.Lo, r.Hi = r.Hi, r.Lo
			}
		}
		out = append(out, NumericRange{Col: dataset.ColPrice, Lo: r.Lo, Hi: r.Hi})
	}
	return out
}

// Apply returns the view of t satisfying every active constraint in st.
// The source table is never modified.
func Apply(t *dataset.Table, st State) *dataset.Table {
	return ApplyPredicates(t, Predicates(t, st)...)
}

// ApplyPredicates keeps the rows matching all predicates. Predicate order
// does not affect the result.
func ApplyPredicates(t *dataset.Table, preds ...Predicate) *dataset.Table {
	return t.Where(func(i int) bool {
		for _, p := range preds {
			if !p.Match(t, i) {
				return false
			}
		}
		return true
	})
}

func ordered(r IntRange) IntRange {
	if r.Lo > r.Hi {
		r.Lo, r.Hi = r.Hi, r.Lo
	}
	return r
}
