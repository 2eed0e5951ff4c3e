package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/vehdash/internal/analysis"
	"github.com/KaramelBytes/vehdash/internal/dashboard"
	"github.com/KaramelBytes/vehdash/internal/dataset"
	"github.com/KaramelBytes/vehdash/internal/utils"
)

var (
	fltFlags        filterFlags
	fltOutputPath   string
	fltMinAds       int
	fltIncludeSmall bool
	fltJSON         bool
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter the listings and print summary metrics",
	Long: `Apply the sidebar filters from the command line, print row/column counts and
the mean price, and optionally export the filtered rows as CSV.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, t, err := loadTable("")
		if err != nil {
			return err
		}
		opt := dashboard.OptionsFromConfig(c)
		st := fltFlags.state(cmd, opt)
		if cmd.Flags().Changed("min-ads") {
			st.MinAds = fltMinAds
		}
		st.IncludeSmall = fltIncludeSmall
		view := dashboard.View(t, st)

		m := analysis.ComputeMetrics(view)
		small := analysis.ModelThreshold(view, st.MinAds, st.IncludeSmall)
		if fltJSON {
			b, err := utils.PrettyJSON(struct {
				Metrics    analysis.Metrics `json:"metrics"`
				ViewerRows int              `json:"viewer_rows"`
				MinAds     int              `json:"min_ads"`
			}{m, small.Len(), st.MinAds})
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		} else {
			txt := m.Text()
			fmt.Printf("Rows: %s\n", txt.Rows)
			fmt.Printf("Columns: %s\n", txt.Cols)
			fmt.Printf("Mean price: %s\n", txt.MeanPrice)
			label := "models with at least " + strconv.Itoa(st.MinAds) + " ads"
			if st.IncludeSmall {
				label = "all models"
			}
			fmt.Printf("Data viewer (%s): %s rows\n", label, analysis.FormatInt(small.Len()))
		}

		if fltOutputPath != "" {
			b, err := dataset.EncodeCSV(view)
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(fltOutputPath, b); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote %s rows to %s\n", analysis.FormatInt(view.Len()), fltOutputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	fltFlags.register(filterCmd)
	filterCmd.Flags().StringVarP(&fltOutputPath, "output", "o", "", "write the filtered rows as CSV (e.g. "+dataset.ExportFileName+")")
	filterCmd.Flags().IntVar(&fltMinAds, "min-ads", 1000, "data viewer: minimum ads per model")
	filterCmd.Flags().BoolVar(&fltIncludeSmall, "include-small", false, "data viewer: keep models below --min-ads")
	filterCmd.Flags().BoolVar(&fltJSON, "json", false, "print metrics as JSON")
}
