package analysis

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

func modelTable(counts map[string]int) *dataset.Table {
	var rows [][]string
	for _, m := range []string{"ford f-150", "chevrolet silverado", "honda civic", "bmw x5"} {
		for i := 0; i < counts[m]; i++ {
			rows = append(rows, []string{m, fmt.Sprint(1000 + i)})
		}
	}
	rows = append(rows, []string{"", "1"})
	return dataset.NewTable([]string{"model", "price"}, rows)
}

func TestModelThresholdExcludesSmallModels(t *testing.T) {
	view := modelTable(map[string]int{"ford f-150": 1200, "chevrolet silverado": 1000, "honda civic": 999, "bmw x5": 3})
	out := ModelThreshold(view, 1000, false)
	if out.Len() != 2200 {
		t.Fatalf("rows = %d, want 2200", out.Len())
	}
	vc, _ := ValueCounts(out, dataset.ColModel)
	for _, c := range vc {
		if c.Count < 1000 {
			t.Fatalf("model %q with %d ads survived", c.Value, c.Count)
		}
	}
	again := ModelThreshold(out, 1000, false)
	if again.Len() != out.Len() {
		t.Fatalf("threshold not idempotent: %d vs %d", again.Len(), out.Len())
	}
}

func TestModelThresholdIncludeSmallAndMissingColumn(t *testing.T) {
	view := modelTable(map[string]int{"bmw x5": 2})
	if got := ModelThreshold(view, 1000, true); got != view {
		t.Fatalf("includeSmall must return the view unchanged")
	}
	noModel := dataset.NewTable([]string{"price"}, [][]string{{"1"}})
	if got := ModelThreshold(noModel, 1000, false); got.Len() != 1 {
		t.Fatalf("missing model column must not restrict rows")
	}
}

func TestValueCountsAndTopValues(t *testing.T) {
	tbl := dataset.NewTable([]string{"type"}, [][]string{{"suv"}, {"sedan"}, {"suv"}, {"truck"}, {"sedan"}, {""}})
	vc, err := ValueCounts(tbl, "type")
	if err != nil {
		t.Fatalf("ValueCounts: %v", err)
	}
	want := []CategoryCount{{"sedan", 2}, {"suv", 2}, {"truck", 1}}
	if !reflect.DeepEqual(vc, want) {
		t.Fatalf("counts = %+v, want %+v", vc, want)
	}
	top, _ := TopValues(tbl, "type", 2)
	if !reflect.DeepEqual(top, []string{"sedan", "suv"}) {
		t.Fatalf("top = %v", top)
	}
	if _, err := TopValues(tbl, "model", 3); err == nil {
		t.Fatalf("expected error for missing column")
	}
}
