package cmd

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/vehdash/internal/dashboard"
)

// filterFlags mirror the dashboard sidebar. They are turned into the same
// query parameters the web page sends so both surfaces share one decoder.
type filterFlags struct {
	yearMin, yearMax   int
	priceMin, priceMax float64
	types, conditions  []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.yearMin, "year-min", 0, "lowest model year (default: observed minimum)")
	fl.IntVar(&f.yearMax, "year-max", 0, "highest model year (default: observed maximum)")
	fl.Float64Var(&f.priceMin, "price-min", 0, "lowest price (default: observed minimum)")
	fl.Float64Var(&f.priceMax, "price-max", 0, "highest price (default: observed maximum)")
	fl.StringSliceVar(&f.types, "type", nil, "vehicle types to keep (repeatable; empty = all)")
	fl.StringSliceVar(&f.conditions, "condition", nil, "conditions to keep (repeatable; empty = all)")
}

// values encodes only the flags set on this invocation.
func (f *filterFlags) values(cmd *cobra.Command) url.Values {
	q := url.Values{}
	fl := cmd.Flags()
	if fl.Changed("year-min") {
		q.Set("year_min", strconv.Itoa(f.yearMin))
	}
	if fl.Changed("year-max") {
		q.Set("year_max", strconv.Itoa(f.yearMax))
	}
	if fl.Changed("price-min") {
		q.Set("price_min", strconv.FormatFloat(f.priceMin, 'f', -1, 64))
	}
	if fl.Changed("price-max") {
		q.Set("price_max", strconv.FormatFloat(f.priceMax, 'f', -1, 64))
	}
	if fl.Changed("type") {
		q["type"] = append([]string(nil), f.types...)
		q.Set("type_set", "1")
	}
	if fl.Changed("condition") {
		q["condition"] = append([]string(nil), f.conditions...)
		q.Set("condition_set", "1")
	}
	return q
}

func (f *filterFlags) state(cmd *cobra.Command, opt dashboard.Options) dashboard.WidgetState {
	return dashboard.ParseState(f.values(cmd), opt)
}
