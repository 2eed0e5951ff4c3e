package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

const cliListings = `price,model_year,model,condition,odometer,type
9400,2011,bmw x5,good,145000,SUV
25500,,ford f-150,good,88705,pickup
5500,2013,hyundai sonata,like new,110000,sedan
1500,2003,ford f-150,fair,,pickup
14900,2017,chrysler 200,excellent,80903,sedan
14990,2014,chrysler 300,excellent,57954,sedan
12990,2015,toyota camry,excellent,79212,sedan
15990,2013,honda pilot,excellent,109473,SUV
`

// resetFlags clears values and Changed state that persist between Execute
// calls in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func mustRun(t *testing.T, args ...string) {
	t.Helper()
	if err := runCmd(t, args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// isolate points HOME at a temp dir and writes the listings fixture there.
func isolate(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VEHDASH_ENV", "production")
	data = filepath.Join(home, "vehicles_us.csv")
	if err := os.WriteFile(data, []byte(cliListings), 0o644); err != nil {
		t.Fatalf("write listings: %v", err)
	}
	return home, data
}

func TestCLI_FilterExportsView(t *testing.T) {
	home, data := isolate(t)
	out := filepath.Join(home, "out", dataset.ExportFileName)

	mustRun(t, "filter", "--data", data, "--type", "sedan", "--year-min", "2014", "-o", out)

	tbl, err := dataset.Load(out, dataset.LoadOptions{})
	if err != nil {
		t.Fatalf("load export: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("exported rows = %d, want 3", tbl.Len())
	}
	if got := strings.Join(tbl.Columns(), ","); got != "price,model_year,model,condition,odometer,type" {
		t.Fatalf("columns = %s", got)
	}

	// a later run without --type must not inherit the previous selection
	mustRun(t, "filter", "--data", data, "-o", out)
	tbl, err = dataset.Load(out, dataset.LoadOptions{})
	if err != nil {
		t.Fatalf("reload export: %v", err)
	}
	if tbl.Len() != 7 {
		t.Fatalf("exported rows = %d, want 7", tbl.Len())
	}
}

func TestCLI_AnalyzeAndChart(t *testing.T) {
	home, data := isolate(t)

	md := filepath.Join(home, "summary.md")
	mustRun(t, "analyze", data, "--group-by", "type", "-o", md)
	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 7", "[GROUP-BY SUMMARY]"} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("summary missing %q:\n%s", want, b)
		}
	}

	png := filepath.Join(home, "hist.png")
	mustRun(t, "chart", "odometer_hist", "--data", data, "-o", png)
	b, err = os.ReadFile(png)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("chart is not a PNG")
	}

	// insufficient data is a notice, not a failure, and writes nothing
	empty := filepath.Join(home, "empty.png")
	mustRun(t, "chart", "odometer_hist", "--data", data, "--type", "convertible", "-o", empty)
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Fatalf("expected no chart for an empty view")
	}

	if err := runCmd(t, "chart", "pie", "--data", data); err == nil {
		t.Fatalf("expected error for unknown panel")
	}
}

func TestCLI_MissingDataFails(t *testing.T) {
	home, _ := isolate(t)
	err := runCmd(t, "filter", "--data", filepath.Join(home, "nope.csv"))
	if err == nil {
		t.Fatalf("expected error for missing data file")
	}
	if !strings.Contains(err.Error(), "data unavailable") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCLI_ConfigSetPersists(t *testing.T) {
	home, _ := isolate(t)
	mustRun(t, "config", "set", "histogram_bins", "25")
	mustRun(t, "config", "set", "data_path", "/srv/vehicles.csv")

	b, err := os.ReadFile(filepath.Join(home, ".vehdash", "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	for _, want := range []string{"histogram_bins: 25", "data_path: /srv/vehicles.csv"} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("config missing %q:\n%s", want, b)
		}
	}
	if err := runCmd(t, "config", "set", "delimiter", "|"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
	if err := runCmd(t, "config", "set", "colour", "red"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
