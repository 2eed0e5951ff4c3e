package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/vehdash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set vehdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("data_path: %s\n", cfg.DataPath)
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		if len(cfg.CORSOrigins) > 0 {
			fmt.Printf("cors_origins: %s\n", strings.Join(cfg.CORSOrigins, ","))
		}
		fmt.Printf("shutdown_timeout_sec: %d\n", cfg.ShutdownTimeoutSec)
		fmt.Printf("preview_rows: %d\n", cfg.PreviewRows)
		fmt.Printf("default_columns: %d\n", cfg.DefaultColumns)
		fmt.Printf("viewer_min_ads: %d\n", cfg.ViewerMinAds)
		fmt.Printf("histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Printf("stacked_top_models: %d\n", cfg.StackedTopModels)
		fmt.Printf("group_top_n: %d\n", cfg.GroupTopN)
		fmt.Printf("compare_top_models: %d\n", cfg.CompareTopModels)
		fmt.Printf("compare_bins: %d\n", cfg.CompareBins)
		fmt.Printf("chart_width: %d\n", cfg.ChartWidth)
		fmt.Printf("chart_height: %d\n", cfg.ChartHeight)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	ints := map[string]*int{
		"shutdown_timeout_sec": &c.ShutdownTimeoutSec,
		"preview_rows":         &c.PreviewRows,
		"default_columns":      &c.DefaultColumns,
		"viewer_min_ads":       &c.ViewerMinAds,
		"histogram_bins":       &c.HistogramBins,
		"stacked_top_models":   &c.StackedTopModels,
		"group_top_n":          &c.GroupTopN,
		"compare_top_models":   &c.CompareTopModels,
		"compare_bins":         &c.CompareBins,
		"chart_width":          &c.ChartWidth,
		"chart_height":         &c.ChartHeight,
	}
	if dst, ok := ints[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	switch key {
	case "data_path":
		c.DataPath = val
	case "delimiter":
		prev := c.Delimiter
		c.Delimiter = val
		if _, err := c.DelimiterRune(); err != nil {
			c.Delimiter = prev
			return err
		}
	case "listen_addr":
		c.ListenAddr = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "cors_origins":
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
