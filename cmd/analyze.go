package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/vehdash/internal/analysis"
	"github.com/KaramelBytes/vehdash/internal/dashboard"
	"github.com/KaramelBytes/vehdash/internal/utils"
)

var (
	anaFlags      filterFlags
	anaOutputPath string
	anaSampleRows int
	anaTopValues  int
	anaGroupBy    []string
	anaMaxGroups  int
	anaOutliers   bool
	anaOutlierThr float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Summarize the filtered listings as Markdown",
	Long: `Produce a concise dataset summary of the filtered view: schema, per-column
statistics, top values, optional group-by breakdowns and sample rows.
The file defaults to the configured data_path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		c, t, err := loadTable(path)
		if err != nil {
			return err
		}
		if path == "" {
			path = c.DataPath
		}
		view := dashboard.View(t, anaFlags.state(cmd, dashboard.OptionsFromConfig(c)))

		opt := analysis.DefaultOptions()
		opt.SampleRows = anaSampleRows
		if anaTopValues > 0 {
			opt.TopValues = anaTopValues
		}
		if anaMaxGroups > 0 {
			opt.MaxGroups = anaMaxGroups
		}
		opt.GroupBy = anaGroupBy
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = anaOutliers
		}
		if anaOutlierThr > 0 {
			opt.OutlierThreshold = anaOutlierThr
		}
		md := analysis.Summarize(path, view, opt).Markdown()

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis (Markdown)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include (0 = none)")
	analyzeCmd.Flags().IntVar(&anaTopValues, "top-values", 8, "top values listed per categorical column")
	analyzeCmd.Flags().StringSliceVar(&anaGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	analyzeCmd.Flags().IntVar(&anaMaxGroups, "max-groups", 20, "maximum groups listed in total across all group-by columns")
	analyzeCmd.Flags().BoolVar(&anaOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	analyzeCmd.Flags().Float64Var(&anaOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
}
