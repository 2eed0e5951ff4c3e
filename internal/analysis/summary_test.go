package analysis

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

func sampleListings() *dataset.Table {
	return dataset.NewTable(
		[]string{"price", "model_year", "model", "condition", "odometer", "type"},
		[][]string{
			{"9400", "2011", "bmw x5", "good", "145000", "SUV"},
			{"25500", "", "ford f-150", "good", "88705", "pickup"},
			{"5500", "2013", "hyundai sonata", "like new", "110000", "sedan"},
			{"1500", "2003", "ford f-150", "fair", "", "pickup"},
			{"14900", "2017", "chrysler 200", "excellent", "80903", "sedan"},
			{"14990", "2014", "chrysler 300", "excellent", "57954", "sedan"},
			{"12990", "2015", "toyota camry", "excellent", "79212", "sedan"},
			{"15990", "2013", "honda pilot", "excellent", "109473", "SUV"},
			{"11500", "2012", "kia sorento", "excellent", "104174", "SUV"},
			{"990000", "2014", "ford f-150", "good", "", "pickup"},
		},
	)
}

func TestSummarizeAndMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 3
	opt.GroupBy = []string{"Type"}
	rep := Summarize("vehicles_us.csv", sampleListings(), opt)

	if rep.Rows != 10 {
		t.Fatalf("rows = %d, want 10", rep.Rows)
	}
	if len(rep.Samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(rep.Samples))
	}
	price := findCol(t, rep, "price")
	if price.Kind != dataset.KindNumeric || price.Min != 1500 || price.Max != 990000 {
		t.Fatalf("price summary = %+v", price)
	}
	if price.OutliersCount != 1 {
		t.Fatalf("price outliers = %d, want 1", price.OutliersCount)
	}
	year := findCol(t, rep, "model_year")
	if year.NonNull != 9 || year.Missing != 1 {
		t.Fatalf("model_year counts = %+v", year)
	}
	model := findCol(t, rep, "model")
	if model.Kind != dataset.KindCategorical || model.TopValues[0].Value != "ford f-150" || model.TopValues[0].Count != 3 {
		t.Fatalf("model top values = %+v", model.TopValues)
	}
	if len(rep.Groups) != 3 || rep.Groups[0].Key != "type=sedan" || rep.Groups[0].Size != 4 {
		t.Fatalf("groups = %+v", rep.Groups)
	}

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: vehicles_us.csv",
		"Rows: 10",
		"- price: numeric (non-null 10, missing 0.0%)",
		"outliers: 1 above |z|>3.5",
		"ford f-150(3)",
		"[GROUP-BY SUMMARY]",
		"- type=sedan (n=4)",
		"[HEAD AND SAMPLE ROWS]",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestSummarizeEmptyViewAndUnknownGroup(t *testing.T) {
	empty := sampleListings().Head(0)
	opt := DefaultOptions()
	opt.GroupBy = []string{"colour"}
	rep := Summarize("", empty, opt)
	if rep.Rows != 0 || len(rep.Samples) != 0 {
		t.Fatalf("unexpected rows/samples: %+v", rep)
	}
	if len(rep.Cols) != 6 {
		t.Fatalf("cols = %d, want 6", len(rep.Cols))
	}
	md := rep.Markdown()
	if !strings.Contains(md, `group-by column "colour" not present`) || !strings.Contains(md, "no rows match") {
		t.Fatalf("markdown missing notes:\n%s", md)
	}
}

func findCol(t *testing.T, rep *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range rep.Cols {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %q not in report", name)
	return ColumnSummary{}
}

func TestSummarizeSampleRowsZeroOmitsSamples(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 0
	rep := Summarize("vehicles_us.csv", sampleListings(), opt)
	if len(rep.Samples) != 0 {
		t.Fatalf("samples = %d, want 0", len(rep.Samples))
	}
	if strings.Contains(rep.Markdown(), "[HEAD AND SAMPLE ROWS]") {
		t.Fatalf("markdown still lists sample rows")
	}

	opt.SampleRows = -1
	if got := len(Summarize("", sampleListings(), opt).Samples); got != 5 {
		t.Fatalf("negative sample rows gave %d samples, want default 5", got)
	}
}

func TestSummarizeMaxGroupsIsTotalCap(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = []string{"type", "condition"}
	opt.MaxGroups = 4
	rep := Summarize("", sampleListings(), opt)
	if len(rep.Groups) != 4 {
		t.Fatalf("groups = %d, want 4 across both columns", len(rep.Groups))
	}
}
