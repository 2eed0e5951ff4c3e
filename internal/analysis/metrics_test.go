package analysis

import (
	"testing"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

func TestComputeMetricsMeanPrice(t *testing.T) {
	tbl := dataset.NewTable([]string{"model_year", "price"}, [][]string{
		{"2015", "15000"}, {"2020", "30000"}, {"2021", ""},
	})
	m := ComputeMetrics(tbl)
	if m.Rows != 3 || m.Cols != 2 {
		t.Fatalf("shape = %d x %d", m.Rows, m.Cols)
	}
	if m.MeanPrice == nil || *m.MeanPrice != 22500 {
		t.Fatalf("mean price = %v, want 22500", m.MeanPrice)
	}
	txt := m.Text()
	if txt.Rows != "3" || txt.Cols != "2" || txt.MeanPrice != "22,500" {
		t.Fatalf("text = %+v", txt)
	}
}

func TestComputeMetricsEmptyAndMissing(t *testing.T) {
	tbl := dataset.NewTable([]string{"model_year", "price", "model"}, [][]string{{"2015", "1", "a"}})
	empty := tbl.Head(0)
	m := ComputeMetrics(empty)
	if m.Rows != 0 || m.Cols != 3 || m.MeanPrice != nil {
		t.Fatalf("empty metrics = %+v", m)
	}
	if m.Text().MeanPrice != Absent {
		t.Fatalf("absent mean should render as %q", Absent)
	}

	noPrice := dataset.NewTable([]string{"model"}, [][]string{{"a"}})
	if ComputeMetrics(noPrice).MeanPrice != nil {
		t.Fatalf("missing price column should give nil mean")
	}
	allNull := dataset.NewTable([]string{"price"}, [][]string{{""}, {""}})
	if ComputeMetrics(allNull).MeanPrice != nil {
		t.Fatalf("all-null price should give nil mean")
	}
}

func TestFormatInt(t *testing.T) {
	cases := map[int]string{0: "0", 999: "999", 1000: "1,000", 51525: "51,525", 1234567: "1,234,567", -4500: "-4,500"}
	for in, want := range cases {
		if got := FormatInt(in); got != want {
			t.Errorf("FormatInt(%d) = %q, want %q", in, got, want)
		}
	}
}
