package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const listingsCSV = ` Price ,MODEL_YEAR,model,condition,odometer,Type
9400,2011.0,bmw x5,good,145000,SUV
25500,,ford f-150,good,88705,pickup
5500,2013.0,hyundai sonata,like new,110000,sedan
1500,2003.0,ford f-150,fair,,pickup
,2017.0,chrysler 200,excellent,80903,sedan
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadNormalizesHeader(t *testing.T) {
	path := writeFixture(t, "vehicles_us.csv", listingsCSV)
	tbl, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"price", "model_year", "model", "condition", "odometer", "type"}
	if got := tbl.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %#v, want %#v", got, want)
	}
	if tbl.Len() != 5 {
		t.Fatalf("rows = %d, want 5", tbl.Len())
	}
	if _, ok := tbl.Value(1, ColModelYear); ok {
		t.Fatalf("expected null model_year on row 1")
	}
	if y, ok := tbl.Float(0, ColModelYear); !ok || y != 2011 {
		t.Fatalf("model_year row 0 = %v (%v), want 2011", y, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), LoadOptions{})
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	path := writeFixture(t, "bad.csv", "a,b\n1,2,3\n")
	if _, err := Load(path, LoadOptions{}); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for long row, got %v", err)
	}
	empty := writeFixture(t, "empty.csv", "")
	if _, err := Load(empty, LoadOptions{}); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for empty file, got %v", err)
	}
}

func TestLoadPadsShortRowsAndSniffsTSV(t *testing.T) {
	path := writeFixture(t, "cars.tsv", "Price\tModel\tType\n100\tvw golf\n")
	tbl, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Width() != 3 || tbl.Len() != 1 {
		t.Fatalf("shape = %dx%d, want 1x3", tbl.Len(), tbl.Width())
	}
	if _, ok := tbl.Value(0, ColType); ok {
		t.Fatalf("padded cell should be null")
	}
}

func TestNormalizeHeaderDuplicatesAndBlanks(t *testing.T) {
	got := normalizeHeader([]string{"\ufeffPrice", " price", "", "Model"})
	want := []string{"price", "price.1", "unnamed: 2", "model"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("header = %#v, want %#v", got, want)
	}
}

func TestSchemaDescribesColumns(t *testing.T) {
	tbl := NewTable([]string{"price", "model", "empty"}, [][]string{
		{"100", "a", ""},
		{"NaN", "b", "null"},
		{"1,250.5", "", ""},
	})
	s := tbl.Schema()
	if !s.Numeric("price") {
		t.Fatalf("price should be numeric")
	}
	info, _ := s.Info("price")
	if info.NonNull != 2 || info.Missing != 1 {
		t.Fatalf("price info = %+v", info)
	}
	if s.Numeric("model") || !s.Usable("model") {
		t.Fatalf("model should be usable categorical")
	}
	if !s.Has("empty") || s.Usable("empty") {
		t.Fatalf("empty column should be present but unusable")
	}
	if s.Has("odometer") || s.HasAll("price", "odometer") {
		t.Fatalf("odometer should be absent")
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12500", 12500, true},
		{" 2011.0 ", 2011, true},
		{"1,250.5", 1250.5, true},
		{"$9,400", 9400, true},
		{"1.250,5", 0, false},
		{"Inf", 0, false},
		{"sedan", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSelectHeadAndSubset(t *testing.T) {
	tbl := NewTable([]string{"a", "b", "c"}, [][]string{{"1", "x", "p"}, {"2", "y", "q"}, {"3", "z", "r"}})
	sel := tbl.Select([]string{"c", "nope", "a", "c"})
	if got := sel.Columns(); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("select columns = %#v", got)
	}
	if got := sel.Row(2); !reflect.DeepEqual(got, []string{"r", "3"}) {
		t.Fatalf("select row = %#v", got)
	}
	if tbl.Head(2).Len() != 2 || tbl.Head(10).Len() != 3 {
		t.Fatalf("head lengths wrong")
	}
	sub := tbl.Subset([]int{2, 0})
	if v, _ := sub.Value(0, "b"); v != "z" {
		t.Fatalf("subset row order wrong: %q", v)
	}
	if _, err := tbl.Floats("nope"); !errors.Is(err, ErrColumnMissing) {
		t.Fatalf("expected ErrColumnMissing, got %v", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	src, err := Read(strings.NewReader(listingsCSV), LoadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	view := src.Where(func(i int) bool {
		y, ok := src.Float(i, ColModelYear)
		return ok && y >= 2011
	})
	b, err := EncodeCSV(view)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	back, err := Read(bytes.NewReader(b), LoadOptions{})
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if !reflect.DeepEqual(back.Columns(), view.Columns()) {
		t.Fatalf("columns differ: %v vs %v", back.Columns(), view.Columns())
	}
	if back.Len() != view.Len() {
		t.Fatalf("rows = %d, want %d", back.Len(), view.Len())
	}
	for i := 0; i < view.Len(); i++ {
		if !reflect.DeepEqual(back.Row(i), view.Row(i)) {
			t.Fatalf("row %d differs: %#v vs %#v", i, back.Row(i), view.Row(i))
		}
	}
}

func TestCacheMemoizesFirstLoad(t *testing.T) {
	path := writeFixture(t, "vehicles_us.csv", listingsCSV)
	c := NewCache(path, LoadOptions{}, nil)
	first, err := c.Table()
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	second, err := c.Table()
	if err != nil {
		t.Fatalf("second load should hit cache: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical cached table")
	}
}

func TestCacheDoesNotMemoizeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.csv")
	c := NewCache(path, LoadOptions{}, nil)
	if _, err := c.Table(); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if err := os.WriteFile(path, []byte(listingsCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := c.Table()
	if err != nil {
		t.Fatalf("load after file appeared: %v", err)
	}
	if tbl.Len() != 5 {
		t.Fatalf("rows = %d, want 5", tbl.Len())
	}
}
