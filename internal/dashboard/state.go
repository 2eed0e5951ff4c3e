// Package dashboard turns a listings table and the current widget state into
// a page description, and serves it over HTTP.
package dashboard

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/KaramelBytes/vehdash/internal/filter"
)

// Toggles are the chart-tab checkboxes.
type Toggles struct {
	Histogram bool `json:"hist"`
	Scatter   bool `json:"scatter"`
	Stacked   bool `json:"stacked"`
	Grouped   bool `json:"grouped"`
	Compare   bool `json:"compare"`
}

// WidgetState is everything the user can set, decoded from one request.
// Nil bounds mean the slider is at its default. A picker that was never
// submitted (its *Set flag false) is at its default of every option; a
// submitted picker with nothing selected means no restriction.
type WidgetState struct {
	YearMin, YearMax   *int
	PriceMin, PriceMax *float64
	Types              []string
	TypesSet           bool
	Conditions         []string
	ConditionsSet      bool

	Columns      []string
	ColumnsSet   bool
	Charts       Toggles
	MinAds       int
	IncludeSmall bool
	ModelA       string
	ModelB       string
	Normalize    bool
}

// ParseState decodes query parameters. Malformed values are ignored and the
// widget keeps its default.
func ParseState(q url.Values, opt Options) WidgetState {
	st := WidgetState{
		YearMin:    intParam(q, "year_min"),
		YearMax:    intParam(q, "year_max"),
		PriceMin:   floatParam(q, "price_min"),
		PriceMax:   floatParam(q, "price_max"),
		Types:      listParam(q, "type", false),
		Conditions: listParam(q, "condition", false),
		Columns:    listParam(q, "cols", true),

		TypesSet:      submitted(q, "type"),
		ConditionsSet: submitted(q, "condition"),
		ColumnsSet:    submitted(q, "cols"),
		Charts: Toggles{
			Histogram: boolParam(q, "hist", true),
			Scatter:   boolParam(q, "scatter", true),
			Stacked:   boolParam(q, "stacked", true),
			Grouped:   boolParam(q, "grouped", true),
			Compare:   boolParam(q, "compare", true),
		},
		MinAds:       opt.ViewerMinAds,
		IncludeSmall: boolParam(q, "include_small", false),
		ModelA:       strings.TrimSpace(q.Get("model_a")),
		ModelB:       strings.TrimSpace(q.Get("model_b")),
		Normalize:    boolParam(q, "normalize", opt.Charts.Normalize),
	}
	if n := intParam(q, "min_ads"); n != nil && *n >= 0 {
		st.MinAds = *n
	}
	return st
}

// FilterState resolves the sidebar widgets against the table's controls.
// A missing bound takes the control's observed bound and a picker that was
// never submitted selects every observed value, so nulls drop out exactly as
// they do when the same selection is submitted.
func (s WidgetState) FilterState(c filter.Controls) filter.State {
	st := filter.State{Types: s.Types, Conditions: s.Conditions}
	if !s.TypesSet {
		st.Types = append([]string(nil), c.Types...)
	}
	if !s.ConditionsSet {
		st.Conditions = append([]string(nil), c.Conditions...)
	}
	if c.Year != nil && (s.YearMin != nil || s.YearMax != nil) {
		r := *c.Year
		if s.YearMin != nil {
			r.Lo = *s.YearMin
		}
		if s.YearMax != nil {
			r.Hi = *s.YearMax
		}
		st.Year = &r
	}
	if c.Price != nil && (s.PriceMin != nil || s.PriceMax != nil) {
		r := *c.Price
		if s.PriceMin != nil {
			r.Lo = *s.PriceMin
		}
		if s.PriceMax != nil {
			r.Hi = *s.PriceMax
		}
		st.Price = &r
	}
	return st
}

// Query encodes the state back into query parameters, omitting defaults.
func (s WidgetState) Query(opt Options) url.Values {
	q := url.Values{}
	if s.YearMin != nil {
		q.Set("year_min", strconv.Itoa(*s.YearMin))
	}
	if s.YearMax != nil {
		q.Set("year_max", strconv.Itoa(*s.YearMax))
	}
	if s.PriceMin != nil {
		q.Set("price_min", strconv.FormatFloat(*s.PriceMin, 'f', -1, 64))
	}
	if s.PriceMax != nil {
		q.Set("price_max", strconv.FormatFloat(*s.PriceMax, 'f', -1, 64))
	}
	encodeList(q, "type", s.Types, s.TypesSet)
	encodeList(q, "condition", s.Conditions, s.ConditionsSet)
	encodeList(q, "cols", s.Columns, s.ColumnsSet)
	for name, on := range map[string]bool{
		"hist": s.Charts.Histogram, "scatter": s.Charts.Scatter, "stacked": s.Charts.Stacked,
		"grouped": s.Charts.Grouped, "compare": s.Charts.Compare,
	} {
		if !on {
			q.Set(name, "0")
		}
	}
	if s.MinAds != opt.ViewerMinAds {
		q.Set("min_ads", strconv.Itoa(s.MinAds))
	}
	if s.IncludeSmall {
		q.Set("include_small", "1")
	}
	if s.ModelA != "" {
		q.Set("model_a", s.ModelA)
	}
	if s.ModelB != "" {
		q.Set("model_b", s.ModelB)
	}
	if s.Normalize != opt.Charts.Normalize {
		q.Set("normalize", strconv.FormatBool(s.Normalize))
	}
	return q
}

// submitted reports whether a picker was part of the request, either by
// value or by its "<key>_set" marker, which forms send even when nothing
// is checked.
func submitted(q url.Values, key string) bool {
	_, vals := q[key]
	_, marker := q[key+"_set"]
	return vals || marker
}

func encodeList(q url.Values, key string, vals []string, set bool) {
	if !set {
		return
	}
	q.Set(key+"_set", "1")
	for _, v := range vals {
		q.Add(key, v)
	}
}

func intParam(q url.Values, key string) *int {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func floatParam(q url.Values, key string) *float64 {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// listParam collects repeated keys, dropping blanks and duplicates. With
// splitComma each value may also hold a comma-separated list.
func listParam(q url.Values, key string, splitComma bool) []string {
	var out []string
	seen := map[string]bool{}
	for _, raw := range q[key] {
		parts := []string{raw}
		if splitComma {
			parts = strings.Split(raw, ",")
		}
		for _, v := range parts {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// boolParam reads the last value of key so a form can pair a hidden "0"
// with a checkbox "1".
func boolParam(q url.Values, key string, def bool) bool {
	vals := q[key]
	if len(vals) == 0 {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(vals[len(vals)-1])) {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	}
	return def
}
