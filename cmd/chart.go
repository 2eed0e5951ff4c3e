package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/vehdash/internal/charts"
	"github.com/KaramelBytes/vehdash/internal/dashboard"
	"github.com/KaramelBytes/vehdash/internal/utils"
)

var (
	chtFlags      filterFlags
	chtOutputPath string
	chtModelA     string
	chtModelB     string
	chtNormalize  bool
	chtWidth      int
	chtHeight     int
)

var chartCmd = &cobra.Command{
	Use:   "chart <panel>",
	Short: "Render one chart panel of the filtered listings to PNG",
	Long: fmt.Sprintf(`Render a chart panel to a PNG file.

Panels: %s`, strings.Join(panelNames(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := charts.ParsePanelID(args[0])
		if err != nil {
			return err
		}
		c, t, err := loadTable("")
		if err != nil {
			return err
		}
		opt := dashboard.OptionsFromConfig(c)
		if chtWidth > 0 {
			opt.ChartSize.Width = chtWidth
		}
		if chtHeight > 0 {
			opt.ChartSize.Height = chtHeight
		}
		st := chtFlags.state(cmd, opt)
		st.ModelA, st.ModelB = chtModelA, chtModelB
		if cmd.Flags().Changed("normalize") {
			st.Normalize = chtNormalize
		}
		view := dashboard.View(t, st)
		params, _ := dashboard.PanelParams(view, st, opt)
		panel := charts.Build(view, id, params)
		if !panel.Ready() {
			if errors.Is(panel.Err, charts.ErrInsufficientData) {
				fmt.Printf("ℹ %s: %s\n", panel.Title, panel.Notice)
				return nil
			}
			return panel.Err
		}
		var buf bytes.Buffer
		if err := charts.RenderPNG(&buf, panel, opt.ChartSize); err != nil {
			return err
		}
		out := chtOutputPath
		if out == "" {
			out = string(id) + ".png"
		}
		if err := utils.SafeWriteFile(out, buf.Bytes()); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Printf("✓ Wrote %s to %s\n", panel.Title, out)
		return nil
	},
}

func panelNames() []string {
	ids := charts.PanelIDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chtFlags.register(chartCmd)
	chartCmd.Flags().StringVarP(&chtOutputPath, "output", "o", "", "PNG path (default <panel>.png)")
	chartCmd.Flags().StringVar(&chtModelA, "model-a", "", "model_comparison: first model (default: most frequent)")
	chartCmd.Flags().StringVar(&chtModelB, "model-b", "", "model_comparison: second model (default: second most frequent)")
	chartCmd.Flags().BoolVar(&chtNormalize, "normalize", true, "model_comparison: show percentages instead of counts")
	chartCmd.Flags().IntVar(&chtWidth, "width", 0, "image width in pixels (default from config)")
	chartCmd.Flags().IntVar(&chtHeight, "height", 0, "image height in pixels (default from config)")
}
