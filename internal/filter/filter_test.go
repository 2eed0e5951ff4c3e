package filter

import (
	"reflect"
	"testing"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

func listings() *dataset.Table {
	return dataset.NewTable(
		[]string{"model_year", "type", "condition", "price", "model"},
		[][]string{
			{"2010", "sedan", "good", "5000", "honda civic"},
			{"2015", "suv", "excellent", "15000", "jeep wrangler"},
			{"2020", "sedan", "like new", "30000", "honda civic"},
			{"2012", "pickup", "fair", "", "ford f-150"},
			{"", "suv", "good", "12000", "jeep wrangler"},
			{"2018", "", "excellent", "22000", "ford f-150"},
		},
	)
}

func rows(t *dataset.Table) [][]string {
	out := make([][]string, t.Len())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

func TestYearRangeExample(t *testing.T) {
	tbl := dataset.NewTable([]string{"model_year", "price"}, [][]string{
		{"2010", "5000"}, {"2015", "15000"}, {"2020", "30000"},
	})
	view := Apply(tbl, State{Year: &IntRange{Lo: 2012, Hi: 2020}})
	want := [][]string{{"2015", "15000"}, {"2020", "30000"}}
	if got := rows(view); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %#v, want %#v", got, want)
	}
}

func TestEmptyTypeSelectionIsNoRestriction(t *testing.T) {
	tbl := dataset.NewTable([]string{"type"}, [][]string{{"sedan"}, {"suv"}, {"sedan"}})
	view := Apply(tbl, State{Types: []string{}})
	if view.Len() != 3 {
		t.Fatalf("empty selection returned %d rows, want 3", view.Len())
	}
	view = Apply(tbl, State{Conditions: nil, Types: []string{"suv"}})
	if view.Len() != 1 {
		t.Fatalf("suv selection returned %d rows, want 1", view.Len())
	}
}

func TestDefaultsDropNullsInActiveColumns(t *testing.T) {
	tbl := listings()
	view := Apply(tbl, ControlsFor(tbl).Defaults())
	// row 3 has no price, row 4 no year, row 5 no type
	if view.Len() != 3 {
		t.Fatalf("default view has %d rows, want 3: %#v", view.Len(), rows(view))
	}
}

func TestMissingColumnsDisableFilters(t *testing.T) {
	tbl := dataset.NewTable([]string{"model", "odometer"}, [][]string{{"a", "1"}, {"b", ""}})
	st := State{
		Year:       &IntRange{Lo: 2000, Hi: 2001},
		Types:      []string{"suv"},
		Conditions: []string{"good"},
		Price:      &FloatRange{Lo: 1, Hi: 2},
	}
	if got := Predicates(tbl, st); len(got) != 0 {
		t.Fatalf("expected no active predicates, got %d", len(got))
	}
	if Apply(tbl, st).Len() != 2 {
		t.Fatalf("missing columns must not restrict rows")
	}

	allNull := dataset.NewTable([]string{"price"}, [][]string{{""}, {""}})
	if Apply(allNull, State{Price: &FloatRange{Lo: 0, Hi: 1}}).Len() != 2 {
		t.Fatalf("entirely empty column must not restrict rows")
	}
}

func TestResultIsSubset(t *testing.T) {
	tbl := listings()
	states := []State{
		{},
		{Year: &IntRange{Lo: 2014, Hi: 2030}},
		{Types: []string{"sedan"}, Price: &FloatRange{Lo: 0, Hi: 10000}},
		{Conditions: []string{"excellent", "good"}, Price: &FloatRange{Lo: 20000, Hi: 1000}},
		{Types: []string{"nope"}},
	}
	source := map[string]bool{}
	for _, r := range rows(tbl) {
		source[key(r)] = true
	}
	for i, st := range states {
		view := Apply(tbl, st)
		if view.Len() > tbl.Len() {
			t.Fatalf("state %d: view larger than source", i)
		}
		for _, r := range rows(view) {
			if !source[key(r)] {
				t.Fatalf("state %d: row %v not in source", i, r)
			}
		}
	}
}

func TestPredicateOrderIndependence(t *testing.T) {
	tbl := listings()
	st := State{
		Year:       &IntRange{Lo: 2011, Hi: 2020},
		Types:      []string{"sedan", "suv"},
		Conditions: []string{"excellent", "like new", "good"},
		Price:      &FloatRange{Lo: 10000, Hi: 40000},
	}
	preds := Predicates(tbl, st)
	if len(preds) != 4 {
		t.Fatalf("expected 4 active predicates, got %d", len(preds))
	}
	want := rows(ApplyPredicates(tbl, preds...))
	permute(preds, 0, func(p []Predicate) {
		view := tbl
		for _, pr := range p {
			view = ApplyPredicates(view, pr)
		}
		if got := rows(view); !reflect.DeepEqual(got, want) {
			t.Fatalf("order %v gave %#v, want %#v", columns(p), got, want)
		}
	})
}

func TestControlsFor(t *testing.T) {
	tbl := dataset.NewTable([]string{"model_year", "type", "price"}, [][]string{
		{"2011.0", "suv", "99.5"}, {"1999.0", "sedan", "5"}, {"", "suv", ""},
	})
	c := ControlsFor(tbl)
	if c.Year == nil || *c.Year != (IntRange{Lo: 1999, Hi: 2011}) {
		t.Fatalf("year = %+v", c.Year)
	}
	if !reflect.DeepEqual(c.Types, []string{"sedan", "suv"}) {
		t.Fatalf("types = %#v", c.Types)
	}
	if c.Conditions != nil {
		t.Fatalf("conditions should be nil for missing column")
	}
	if c.Price == nil || *c.Price != (FloatRange{Lo: 5, Hi: 100}) {
		t.Fatalf("price = %+v", c.Price)
	}
	d := c.Defaults()
	d.Types[0] = "changed"
	if c.Types[0] != "sedan" {
		t.Fatalf("defaults must not alias controls")
	}
}

func key(r []string) string {
	s := ""
	for _, v := range r {
		s += v + "\x00"
	}
	return s
}

func columns(p []Predicate) []string {
	out := make([]string, len(p))
	for i, pr := range p {
		out[i] = pr.Column()
	}
	return out
}

func permute(p []Predicate, k int, fn func([]Predicate)) {
	if k == len(p) {
		cp := append([]Predicate(nil), p...)
		fn(cp)
		return
	}
	for i := k; i < len(p); i++ {
		p[k], p[i] = p[i], p[k]
		permute(p, k+1, fn)
		p[k], p[i] = p[i], p[k]
	}
}
